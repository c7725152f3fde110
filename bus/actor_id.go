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

package bus

import (
	"fmt"

	"github.com/google/uuid"
)

// ActorID identifies a registered actor. Two calls to NewActorID never
// return equal values, even for the same name.
type ActorID struct {
	name string
	uid  uuid.UUID
}

// NewActorID creates a unique actor identity with the given display name
func NewActorID(name string) ActorID {
	return ActorID{
		name: name,
		uid:  uuid.New(),
	}
}

// Name returns the display name
func (x ActorID) Name() string {
	return x.name
}

// IsZero reports whether the identity was never assigned
func (x ActorID) IsZero() bool {
	return x.uid == uuid.Nil
}

// String implements fmt.Stringer
func (x ActorID) String() string {
	return fmt.Sprintf("%s/%s", x.name, x.uid.String())
}
