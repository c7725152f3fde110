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
	"reflect"
	"strings"
)

// Name returns the fully qualified name of the dynamic type of v,
// e.g. "*github.com/tochemey/gurionrock/messages.Tick".
// A nil value yields "nil".
func Name(v any) string {
	if v == nil {
		return "nil"
	}
	return Of(reflect.TypeOf(v))
}

// NameFor returns the fully qualified name of T. For any value v of type T,
// NameFor[T]() == Name(v) as long as T is not an interface type.
func NameFor[T any]() string {
	return Of(reflect.TypeFor[T]())
}

// Of returns the fully qualified name of the given reflect.Type.
// Named types are qualified by their package path so that two types with the
// same short name in different packages never collide.
func Of(rtype reflect.Type) string {
	if rtype == nil {
		return "nil"
	}

	var sb strings.Builder
	for rtype.Kind() == reflect.Pointer && rtype.Name() == "" {
		sb.WriteByte('*')
		rtype = rtype.Elem()
	}

	if pkg := rtype.PkgPath(); pkg != "" && rtype.Name() != "" {
		sb.WriteString(pkg)
		sb.WriteByte('.')
		sb.WriteString(rtype.Name())
		return sb.String()
	}

	sb.WriteString(rtype.String())
	return sb.String()
}

// Short returns the last path element of a fully qualified type name,
// e.g. "*messages.Tick". It is meant for logs.
func Short(name string) string {
	trimmed := strings.TrimLeft(name, "*")
	prefix := name[:len(name)-len(trimmed)]
	if index := strings.LastIndex(trimmed, "/"); index >= 0 {
		trimmed = trimmed[index+1:]
	}
	return prefix + trimmed
}
