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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testStruct struct{}

type otherStruct struct {
	testStruct
}

func TestName(t *testing.T) {
	const pkg = "github.com/tochemey/gurionrock/internal/types"

	assert.Equal(t, pkg+".testStruct", Name(testStruct{}))
	assert.Equal(t, "*"+pkg+".testStruct", Name(new(testStruct)))
	assert.Equal(t, "**"+pkg+".testStruct", Name(new(*testStruct)))
	assert.Equal(t, "int", Name(1))
	assert.Equal(t, "[]string", Name([]string{}))
	assert.Equal(t, "nil", Name(nil))
	assert.NotEqual(t, Name(testStruct{}), Name(otherStruct{}))
}

func TestNameFor(t *testing.T) {
	assert.Equal(t, Name(testStruct{}), NameFor[testStruct]())
	assert.Equal(t, Name(new(testStruct)), NameFor[*testStruct]())
	assert.Equal(t, Name("value"), NameFor[string]())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "*types.testStruct", Short(Name(new(testStruct))))
	assert.Equal(t, "types.testStruct", Short(Name(testStruct{})))
	assert.Equal(t, "int", Short("int"))
}
