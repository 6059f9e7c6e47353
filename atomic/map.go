/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2024 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package atomic

import "sync"

// Map is a generic, concurrency-safe map built directly on sync.Map. Unlike
// sync.Map itself it is typed end to end, so callers never juggle any.
type Map[K comparable, V any] interface {
	Load(key K) (value V, ok bool)
	Store(key K, value V)
	LoadOrStore(key K, value V) (actual V, loaded bool)
	LoadAndDelete(key K) (value V, loaded bool)
	Delete(key K)
	Swap(key K, value V) (previous V, loaded bool)
	CompareAndSwap(key K, old, new V) bool
	CompareAndDelete(key K, old V) (deleted bool)
	// Range calls f for every key, in unspecified order, stopping early if f
	// returns false. A key whose value can no longer be cast to V (should
	// never happen through this type's own API) is dropped rather than
	// passed to f.
	Range(f func(key K, value V) bool)
	Len() int
}

type tmap[K comparable, V any] struct {
	m sync.Map
	n Value[int]
}

// NewMap returns an empty Map[K,V].
func NewMap[K comparable, V any]() Map[K, V] {
	return &tmap[K, V]{n: NewValue[int]()}
}

func (o *tmap[K, V]) Load(key K) (value V, ok bool) {
	return Cast[V](loadRaw(&o.m, key))
}

func (o *tmap[K, V]) Store(key K, value V) {
	if _, existed := o.m.Load(key); !existed {
		o.n.Store(o.n.Load() + 1)
	}
	o.m.Store(key, value)
}

func (o *tmap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	a, l := o.m.LoadOrStore(key, value)
	if !l {
		o.n.Store(o.n.Load() + 1)
	}
	v, _ := Cast[V](a)
	return v, l
}

func (o *tmap[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	a, l := o.m.LoadAndDelete(key)
	if l {
		o.n.Store(o.n.Load() - 1)
	}
	v, _ := Cast[V](a)
	return v, l
}

func (o *tmap[K, V]) Delete(key K) {
	o.LoadAndDelete(key)
}

func (o *tmap[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	prev, l := o.m.Swap(key, value)
	if !l {
		o.n.Store(o.n.Load() + 1)
	}
	v, _ := Cast[V](prev)
	return v, l
}

func (o *tmap[K, V]) CompareAndSwap(key K, old, new V) bool {
	return o.m.CompareAndSwap(key, old, new)
}

func (o *tmap[K, V]) CompareAndDelete(key K, old V) (deleted bool) {
	d := o.m.CompareAndDelete(key, old)
	if d {
		o.n.Store(o.n.Load() - 1)
	}
	return d
}

func (o *tmap[K, V]) Range(f func(key K, value V) bool) {
	o.m.Range(func(k, v any) bool {
		tk, ok := Cast[K](k)
		if !ok {
			return true
		}

		tv, ok := Cast[V](v)
		if !ok {
			o.m.Delete(k)
			return true
		}

		return f(tk, tv)
	})
}

func (o *tmap[K, V]) Len() int {
	return o.n.Load()
}

func loadRaw(m *sync.Map, key any) any {
	v, _ := m.Load(key)
	return v
}
