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

package validation

import (
	"fmt"
	"os"
)

// fileValidator checks that a path names a readable regular file
type fileValidator struct {
	field string
	path  string
}

var _ Validator = (*fileValidator)(nil)

// NewFileValidator creates a validator failing when path is not a regular file
func NewFileValidator(field, path string) Validator {
	return &fileValidator{field: field, path: path}
}

// Validate executes the validation
func (v *fileValidator) Validate() error {
	if v.path == "" {
		return fmt.Errorf("the [%s] is required", v.field)
	}

	info, err := os.Stat(v.path)
	if err != nil {
		return fmt.Errorf("the [%s] is not accessible: %w", v.field, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("the [%s] (%s) is not a regular file", v.field, v.path)
	}
	return nil
}
