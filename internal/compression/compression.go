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

// Package compression provides the stream codecs used for output files.
package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Algorithm names a compression algorithm
type Algorithm string

const (
	// None leaves the payload as is
	None Algorithm = "none"
	// Zstd is the name of the Zstandard compression algorithm.
	// Reference: https://www.iana.org/assignments/http-parameters/http-parameters.xml#content-coding
	Zstd Algorithm = "zstd"
	// Brotli is the name of the Brotli compression algorithm
	Brotli Algorithm = "br"
)

// FromPath picks the algorithm matching the file extension of path
func FromPath(path string) Algorithm {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".br":
		return Brotli
	default:
		return None
	}
}

// NewWriter wraps w with a compressing writer. Close must be called to flush
// the compressed stream. Closing never closes w.
func NewWriter(algorithm Algorithm, w io.Writer) (io.WriteCloser, error) {
	switch algorithm {
	case None, "":
		return nopWriteCloser{w}, nil
	case Zstd:
		return newZstdWriter(w)
	case Brotli:
		return newBrotliWriter(w, DefaultBrotliLevel), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm (%s)", algorithm)
	}
}

// NewReader wraps r with a decompressing reader
func NewReader(algorithm Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algorithm {
	case None, "":
		return io.NopCloser(r), nil
	case Zstd:
		return newZstdReader(r)
	case Brotli:
		return newBrotliReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm (%s)", algorithm)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
