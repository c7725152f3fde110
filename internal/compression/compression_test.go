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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	testCases := []struct {
		path     string
		expected Algorithm
	}{
		{path: "output_file.json", expected: None},
		{path: "output_file.json.zst", expected: Zstd},
		{path: "output_file.ZSTD", expected: Zstd},
		{path: "/tmp/output.json.br", expected: Brotli},
		{path: "output", expected: None},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, FromPath(tc.path))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"id":"Wall_1","description":"Wall"}`, 64))

	for _, algorithm := range []Algorithm{None, Zstd, Brotli} {
		t.Run(string(algorithm), func(t *testing.T) {
			var buffer bytes.Buffer
			writer, err := NewWriter(algorithm, &buffer)
			require.NoError(t, err)

			_, err = writer.Write(payload)
			require.NoError(t, err)
			require.NoError(t, writer.Close())
			// closing twice is harmless
			require.NoError(t, writer.Close())

			if algorithm != None {
				assert.Less(t, buffer.Len(), len(payload))
			}

			reader, err := NewReader(algorithm, &buffer)
			require.NoError(t, err)
			actual, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.NoError(t, reader.Close())
			assert.Equal(t, payload, actual)
		})
	}
}

func TestWriteAfterClose(t *testing.T) {
	for _, algorithm := range []Algorithm{Zstd, Brotli} {
		t.Run(string(algorithm), func(t *testing.T) {
			writer, err := NewWriter(algorithm, io.Discard)
			require.NoError(t, err)
			require.NoError(t, writer.Close())
			_, err = writer.Write([]byte("late"))
			assert.ErrorIs(t, err, io.ErrClosedPipe)
		})
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewWriter("lz4", io.Discard)
	require.Error(t, err)
	_, err = NewReader("lz4", strings.NewReader(""))
	require.Error(t, err)
}
