/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
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

// Package oid provides the indirect object identity used to address servants
// across the wire: a (name, category) pair, comparable and usable as a map key.
package oid

import "fmt"

// Oid identifies a servant independently of its in-memory residency: the same
// Oid can name a live servant, a frozen one, or one that does not exist yet.
type Oid struct {
	Name     string
	Category string
}

// New returns an Oid for the given name and category.
func New(name, category string) Oid {
	return Oid{Name: name, Category: category}
}

// String renders the Oid the same way across logs, errors and remote traces.
func (o Oid) String() string {
	return fmt.Sprintf("Oid(%s: %s)", o.Name, o.Category)
}

// IsZero reports whether o is the zero-value Oid.
func (o Oid) IsZero() bool {
	return o.Name == "" && o.Category == ""
}
