/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
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

package freeze

import (
	"sync"

	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/rpcerr"
)

// Rehydrator turns a servant's dumped bytes back into a live entity of type
// T. One is enrolled per category; T is instantiated by the registry as its
// own servant-entity type, keeping this package free of any dependency on
// what a servant actually is.
type Rehydrator[T any] func(name string, data []byte) (T, error)

// Freeze pairs a byte-level Storage with the per-category knowledge needed
// to turn those bytes back into a servant.
type Freeze[T any] struct {
	mu          sync.Mutex
	rehydrators map[string]Rehydrator[T]
	db          Storage
}

// New returns a Freeze backed by db, with no categories enrolled yet.
func New[T any](db Storage) *Freeze[T] {
	return &Freeze[T]{rehydrators: make(map[string]Rehydrator[T]), db: db}
}

// Enroll registers the rehydrator for category. Returns
// ErrFreezeDuplicateCategory if the category is already enrolled.
func (f *Freeze[T]) Enroll(category string, r Rehydrator[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rehydrators[category]; ok {
		return rpcerr.ErrFreezeDuplicateCategory.Errorf("category %q is already enrolled in freeze", category)
	}
	f.rehydrators[category] = r

	return nil
}

// Store passivates data under o.
func (f *Freeze[T]) Store(o oid.Oid, data []byte) error {
	return f.db.Store(o, data)
}

// Load reads back and rehydrates the entity stored under o. Returns
// ErrFreezeMiss if o was never stored, or ErrFreezeNoRehydrator if its
// category has no enrolled Rehydrator.
func (f *Freeze[T]) Load(o oid.Oid) (T, error) {
	var zero T

	data, err := f.db.Load(o)
	if err != nil {
		return zero, err
	}

	f.mu.Lock()
	r, ok := f.rehydrators[o.Category]
	f.mu.Unlock()

	if !ok {
		return zero, rpcerr.ErrFreezeNoRehydrator.Errorf("no rehydrator registered for category %q", o.Category)
	}

	return r(o.Name, data)
}
