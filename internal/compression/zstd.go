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
	"runtime"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdEncodersPool = sync.Pool{
	New: func() any {
		enc, _ := newEncoder(nil)
		return enc
	},
}

func newEncoder(w io.Writer) (*zstd.Encoder, error) {
	concurrency := runtime.GOMAXPROCS(0)
	if concurrency < 1 {
		concurrency = 1
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithWindowSize(4<<20),
		zstd.WithEncoderConcurrency(concurrency),
	)
}

func newDecoder(r io.Reader) (*zstd.Decoder, error) {
	return zstd.NewReader(r,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(64<<20),
	)
}

// zstdWriter returns its encoder to the pool on Close
type zstdWriter struct {
	encoder *zstd.Encoder
	mu      sync.Mutex
}

func newZstdWriter(w io.Writer) (*zstdWriter, error) {
	encoder, ok := zstdEncodersPool.Get().(*zstd.Encoder)
	if !ok || encoder == nil {
		var err error
		if encoder, err = newEncoder(nil); err != nil {
			return nil, err
		}
	}
	encoder.Reset(w)
	return &zstdWriter{encoder: encoder}, nil
}

func (x *zstdWriter) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.encoder == nil {
		return 0, io.ErrClosedPipe
	}
	return x.encoder.Write(p)
}

func (x *zstdWriter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.encoder == nil {
		return nil
	}

	err := x.encoder.Close()
	x.encoder.Reset(nil)
	zstdEncodersPool.Put(x.encoder)
	x.encoder = nil
	return err
}

// zstdReader releases the decoder on Close. A zstd.Decoder cannot be reused after Close.
type zstdReader struct {
	decoder *zstd.Decoder
}

func newZstdReader(r io.Reader) (*zstdReader, error) {
	decoder, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	return &zstdReader{decoder: decoder}, nil
}

func (x *zstdReader) Read(p []byte) (int, error) {
	if x.decoder == nil {
		return 0, io.EOF
	}
	return x.decoder.Read(p)
}

func (x *zstdReader) Close() error {
	if x.decoder != nil {
		x.decoder.Close()
		x.decoder = nil
	}
	return nil
}
