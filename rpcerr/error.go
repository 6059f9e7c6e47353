/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2020 Nicolas JUHEL
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

package rpcerr

import (
	"errors"
	"strings"
)

// Error extends the standard error with a numeric code and a parent chain,
// so a low-level I/O failure can be wrapped without losing its own code.
type Error interface {
	error

	Code() Code
	IsCode(code Code) bool
	HasCode(code Code) bool

	Parent() []error
	HasParent() bool
	Add(parent ...error)

	Unwrap() []error
}

type coded struct {
	code    Code
	message string
	parent  []error
}

// New builds an Error with the given code, message and optional parent chain.
func New(code Code, message string, parent ...error) Error {
	e := &coded{code: code, message: message}
	e.Add(parent...)
	return e
}

func (e *coded) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.message)

	for _, p := range e.parent {
		if p == nil {
			continue
		}
		b.WriteString(": ")
		b.WriteString(p.Error())
	}

	return b.String()
}

func (e *coded) Code() Code {
	if e == nil {
		return UnknownError
	}
	return e.code
}

func (e *coded) IsCode(code Code) bool {
	return e.Code() == code
}

func (e *coded) HasCode(code Code) bool {
	if e.IsCode(code) {
		return true
	}

	for _, p := range e.parent {
		var c Error
		if errors.As(p, &c) && c.HasCode(code) {
			return true
		}
	}

	return false
}

func (e *coded) Parent() []error {
	if e == nil {
		return nil
	}
	return e.parent
}

func (e *coded) HasParent() bool {
	return len(e.Parent()) > 0
}

func (e *coded) Add(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
}

func (e *coded) Unwrap() []error {
	return e.Parent()
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var c Error
	if errors.As(err, &c) {
		return c.HasCode(code)
	}
	return false
}

// Get extracts the Error interface from err, if present in its chain.
func Get(err error) (Error, bool) {
	var c Error
	ok := errors.As(err, &c)
	return c, ok
}
