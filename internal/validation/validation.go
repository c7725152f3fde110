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

// Package validation checks configuration values and reports every violation
// of a chain as a single error.
package validation

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validator checks a single setting
type Validator interface {
	Validate() error
}

// ValidatorFunc turns a function into a Validator
type ValidatorFunc func() error

// Validate calls f
func (f ValidatorFunc) Validate() error {
	return f()
}

// Chain runs its validators in the order they were added
type Chain struct {
	failFast   bool
	validators []Validator
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// New creates an empty chain. Every violation is reported unless FailFast is given.
func New(opts ...ChainOption) *Chain {
	chain := new(Chain)
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// FailFast stops the chain at the first violation
func FailFast() ChainOption {
	return func(c *Chain) { c.failFast = true }
}

// AllErrors reports every violation of the chain
func AllErrors() ChainOption {
	return func(c *Chain) { c.failFast = false }
}

// Len returns the number of validators in the chain
func (c *Chain) Len() int {
	return len(c.validators)
}

// AddValidator appends v to the chain
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion appends a condition that must hold
func (c *Chain) AddAssertion(holds bool, message string) *Chain {
	return c.AddValidator(NewAssertion(holds, message))
}

// AddAssertionf is AddAssertion with a formatted message
func (c *Chain) AddAssertionf(holds bool, format string, args ...any) *Chain {
	if holds {
		return c.AddValidator(NewAssertion(true, ""))
	}
	return c.AddValidator(NewAssertion(false, fmt.Sprintf(format, args...)))
}

// Validate runs the chain. The violations are combined with multierr, so
// multierr.Errors lists them one by one.
func (c *Chain) Validate() error {
	var violations error
	for _, v := range c.validators {
		err := v.Validate()
		if err == nil {
			continue
		}
		if c.failFast {
			return err
		}
		violations = multierr.Append(violations, err)
	}
	return violations
}
