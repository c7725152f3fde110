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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorNotRegistered is returned when a bus operation targets an actor
	// that has no mailbox. It signals a programming error.
	ErrActorNotRegistered = errors.New("actor is not registered")

	// ErrNoSubscribers is returned when an event is sent to a type nobody subscribed to.
	// The event is undeliverable and no future is created.
	ErrNoSubscribers = errors.New("no subscribers for message type")

	// ErrMailboxClosed is returned when the mailbox is closed while an actor waits on it.
	ErrMailboxClosed = errors.New("mailbox is closed")

	// ErrAlreadyStarted is returned when a service is started twice.
	ErrAlreadyStarted = errors.New("service has already started")

	// ErrInitFailure is returned when a service initializer fails.
	ErrInitFailure = errors.New("service initialization failed")

	// ErrInvalidConfig is returned when the configuration cannot be loaded or is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutputFailure is returned when the final output cannot be written.
	ErrOutputFailure = errors.New("failed to write output")

	// ErrStatsUnavailable is returned when the statistics actor did not answer in time.
	ErrStatsUnavailable = errors.New("statistics are not available")
)

// NewErrNoSubscribers formats an ErrNoSubscribers with the given message type.
func NewErrNoSubscribers(topic string) error {
	return fmt.Errorf("type=(%s) %w", topic, ErrNoSubscribers)
}

// NewErrActorNotRegistered formats an ErrActorNotRegistered with the given actor.
func NewErrActorNotRegistered(actor string) error {
	return fmt.Errorf("actor=(%s) %w", actor, ErrActorNotRegistered)
}

// NewErrInitFailure wraps a base error with ErrInitFailure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrInvalidConfig wraps a base error with ErrInvalidConfig.
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// NewErrOutputFailure wraps a base error with ErrOutputFailure.
func NewErrOutputFailure(err error) error {
	return errors.Join(ErrOutputFailure, err)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
