/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package compression

import (
	"io"
	"sync"

	"github.com/andybalholm/brotli"
)

// DefaultBrotliLevel is the brotli level used for output files
const DefaultBrotliLevel = brotli.DefaultCompression

// writer pools keyed by compression level
var (
	writerPools      = make(map[int]*sync.Pool)
	writerPoolsMutex sync.RWMutex
)

// getWriterPool returns or creates a pool for the given compression level
func getWriterPool(level int) *sync.Pool {
	writerPoolsMutex.RLock()
	pool, exists := writerPools[level]
	writerPoolsMutex.RUnlock()

	if exists {
		return pool
	}

	writerPoolsMutex.Lock()
	defer writerPoolsMutex.Unlock()

	if pool, exists := writerPools[level]; exists {
		return pool
	}

	pool = &sync.Pool{
		New: func() any {
			return brotli.NewWriterLevel(nil, level)
		},
	}
	writerPools[level] = pool
	return pool
}

// brotliWriter wraps a pooled brotli writer
type brotliWriter struct {
	*brotli.Writer
	pool *sync.Pool
}

func newBrotliWriter(w io.Writer, level int) *brotliWriter {
	pool := getWriterPool(level)
	writer := pool.Get().(*brotli.Writer)
	writer.Reset(w)
	return &brotliWriter{Writer: writer, pool: pool}
}

// Write compresses data using the underlying brotli writer.
func (b *brotliWriter) Write(p []byte) (int, error) {
	if b.Writer == nil {
		return 0, io.ErrClosedPipe
	}
	return b.Writer.Write(p)
}

// Close finalizes compression and returns the writer to the pool.
func (b *brotliWriter) Close() error {
	if b.Writer == nil {
		return nil
	}

	err := b.Writer.Close()
	b.Writer.Reset(nil)
	b.pool.Put(b.Writer)
	b.Writer = nil
	return err
}

type brotliReader struct {
	*brotli.Reader
}

func newBrotliReader(r io.Reader) *brotliReader {
	return &brotliReader{Reader: brotli.NewReader(r)}
}

func (b *brotliReader) Close() error {
	return nil
}
