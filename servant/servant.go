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

// Package servant defines the interfaces an application implements to expose
// behavior through this runtime: Servant for request/response calls routed
// by Oid, WatchServant for the one unaddressed "default" servant a registry
// may designate, ReportServant for fire-and-forget inbound messages, and
// NotifyServant for the terminal side of a server-initiated broadcast.
package servant

import "github.com/sabouaram/icerpc/wire"

// Servant serves Requests addressed at a specific Oid.
type Servant interface {
	Name() string
	Serve(ctx *wire.Context, req []byte) []byte
}

// Dumper is implemented by a Servant that supports passivation: Dump
// returns the bytes the registry's freeze store will hold until the
// servant is looked up again. A Servant without this method cannot be
// evicted and stays resident for the registry's whole lifetime.
type Dumper interface {
	Dump() ([]byte, error)
}

// WatchServant serves Requests with no Oid, the registry's single
// catch-all servant.
type WatchServant interface {
	Serve(req []byte) []byte
}

// ReportServant serves Report records addressed at a specific Oid. Unlike
// Servant it returns nothing: Report delivery is fire-and-forget.
type ReportServant interface {
	Name() string
	Serve(req []byte)
}

// NotifyServant is the terminal-side counterpart of an adapter's Notice
// broadcast.
type NotifyServant interface {
	Serve(req []byte)
}

// Dump returns s's passivation bytes, or ErrNotSerializable if s does not
// implement Dumper.
func Dump(s Servant) ([]byte, error) {
	d, ok := s.(Dumper)
	if !ok {
		return nil, ErrNotSerializable
	}
	return d.Dump()
}
