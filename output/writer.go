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

// Package output persists the result of a simulation run.
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flowchartsman/retry"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/multierr"

	"github.com/tochemey/gurionrock/errors"
	"github.com/tochemey/gurionrock/internal/compression"
	"github.com/tochemey/gurionrock/log"
)

type compressionAlgorithm = compression.Algorithm

// Compression algorithms accepted by WithCompression
const (
	NoCompression     = compression.None
	ZstdCompression   = compression.Zstd
	BrotliCompression = compression.Brotli
)

// Writer persists a run result
type Writer interface {
	// Write serializes v. It is called once per run.
	Write(ctx context.Context, v any) error
}

// FileWriter writes indented JSON to a file. The file is replaced atomically:
// readers never observe a partially written output.
type FileWriter struct {
	path         string
	algorithm    compression.Algorithm
	logger       log.Logger
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates a FileWriter for path. The compression is picked
// from the extension: .zst for zstd, .br for brotli.
func NewFileWriter(path string, opts ...Option) *FileWriter {
	writer := &FileWriter{
		path:         path,
		algorithm:    compression.FromPath(path),
		logger:       log.DefaultLogger,
		attempts:     3,
		initialDelay: 50 * time.Millisecond,
		maxDelay:     time.Second,
	}

	for _, opt := range opts {
		opt.Apply(writer)
	}
	return writer
}

// Path returns the output path
func (w *FileWriter) Path() string {
	return w.path
}

// Write serializes v to the output file
func (w *FileWriter) Write(ctx context.Context, v any) error {
	bytea, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewErrOutputFailure(err)
	}

	attempt := 0
	retrier := retry.NewRetrier(w.attempts, w.initialDelay, w.maxDelay)
	err = retrier.RunContext(ctx, func(_ context.Context) error {
		attempt++
		if err := w.replace(bytea); err != nil {
			w.logger.Warnf("attempt %d to write output (%s) failed: %v", attempt, w.path, err)
			return err
		}
		return nil
	})

	if err != nil {
		w.logger.Errorf("failed to write output (%s): %v", w.path, err)
		return errors.NewErrOutputFailure(err)
	}

	w.logger.Infof("output written to (%s)", w.path)
	return nil
}

// replace writes the payload to a temporary sibling and renames it over the target
func (w *FileWriter) replace(payload []byte) (err error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(w.path), gonanoid.Must(8)))
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp))
		}
	}()

	buffered := bufio.NewWriter(file)
	encoder, err := compression.NewWriter(w.algorithm, buffered)
	if err != nil {
		return multierr.Append(err, file.Close())
	}

	if _, err = encoder.Write(payload); err != nil {
		return multierr.Combine(err, encoder.Close(), file.Close())
	}

	if err = multierr.Combine(encoder.Close(), buffered.Flush(), file.Sync()); err != nil {
		return multierr.Append(err, file.Close())
	}

	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}
