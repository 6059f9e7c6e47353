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

package atomic

import (
	"sync/atomic"
)

// Value is a generic, lock-free holder of T with an optional default
// returned by Load before the first Store.
type Value[T any] interface {
	SetDefaultLoad(def T)
	Load() (val T)
	Store(val T)
	Swap(new T) (old T)
	CompareAndSwap(old, new T) (swapped bool)
}

// val is the sync/atomic.Value-backed implementation of Value[T].
type val[T any] struct {
	av *atomic.Value
	dl *atomic.Value
}

// NewValue returns a Value[T] whose Load returns T's zero value until the
// first Store.
func NewValue[T any]() Value[T] {
	return NewValueDefault[T](*new(T))
}

// NewValueDefault returns a Value[T] whose Load returns def until the first
// Store.
func NewValueDefault[T any](def T) Value[T] {
	o := &val[T]{
		av: new(atomic.Value),
		dl: new(atomic.Value),
	}

	o.SetDefaultLoad(def)

	return o
}

func (o *val[T]) SetDefaultLoad(def T) {
	o.dl.Store(box[T]{v: def})
}

func (o *val[T]) getDefaultLoad() T {
	if b, ok := Cast[box[T]](o.dl.Load()); ok {
		return b.v
	}

	var zero T
	return zero
}

// box wraps T so the zero value of T (e.g. nil for an interface element,
// the empty string) can still be told apart from "nothing stored yet" when
// pulled back out of atomic.Value, which rejects storing untyped nil.
type box[T any] struct {
	v T
}

func (o *val[T]) Load() (v T) {
	if b, ok := Cast[box[T]](o.av.Load()); ok {
		return b.v
	}
	return o.getDefaultLoad()
}

func (o *val[T]) Store(v T) {
	o.av.Store(box[T]{v: v})
}

func (o *val[T]) Swap(new T) (old T) {
	prev := o.av.Swap(box[T]{v: new})
	if b, ok := Cast[box[T]](prev); ok {
		return b.v
	}
	return o.getDefaultLoad()
}

func (o *val[T]) CompareAndSwap(old, new T) (swapped bool) {
	if o.av.CompareAndSwap(box[T]{v: old}, box[T]{v: new}) {
		return true
	}
	// Nothing stored yet: Load reports the default, so compare against it.
	if o.av.Load() == nil && any(o.getDefaultLoad()) == any(old) {
		return o.av.CompareAndSwap(nil, box[T]{v: new})
	}
	return false
}
