/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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
 *
 *
 */

// Package atomic provides generic, lock-free containers (Value[T], Map[K,V])
// built on sync/atomic and sync.Map, used wherever this runtime shares mutable
// state across connection goroutines without reaching for a mutex.
package atomic

import "reflect"

// Cast attempts to convert src, typically an any pulled out of atomic.Value
// or sync.Map, to the target type M. It reports false both for nil and for a
// value of some other type.
func Cast[M any](src any) (model M, casted bool) {
	if src == nil {
		return model, false
	}

	v, ok := src.(M)
	if !ok {
		return model, false
	}

	return v, true
}

// IsEmpty reports whether src is nil, cannot be cast to M, or casts to M's
// zero value.
func IsEmpty[M any](src any) bool {
	v, ok := Cast[M](src)
	if !ok {
		return true
	}

	return reflect.ValueOf(&v).Elem().IsZero()
}
