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

// Package wire defines the four record kinds exchanged between an adapter
// and a terminal (Notice, Report, Request, Response), and the length-framed
// codec used to put them on a TCP stream.
package wire

import "time"

// UserCookie identifies the authenticated principal a Request is made on
// behalf of, set by whatever login step the embedding application performs.
// Zero means anonymous.
type UserCookie uint64

// Context rides along with a Request, carrying the caller's deadline,
// identity and free-form attributes through to the servant that serves it.
type Context struct {
	// Timeout bounds how long the caller is willing to wait for a Response.
	// Zero means the terminal's Client.CallTimeout applies.
	Timeout time.Duration
	// UserCookie is nil for an unauthenticated call.
	UserCookie *UserCookie
	// ConnectionID is the adapter-assigned identifier of the connection the
	// Request arrived on, filled in server-side; callers leave it empty.
	ConnectionID string
	Attributes   map[string]string
}

// NewContext returns an empty Context with an initialized Attributes map.
func NewContext() *Context {
	return &Context{Attributes: make(map[string]string)}
}

// Clone returns a deep copy, so a servant can safely mutate the Attributes
// map of a Context it was handed without affecting the caller's copy.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}

	cp := &Context{
		Timeout:      c.Timeout,
		ConnectionID: c.ConnectionID,
	}

	if c.UserCookie != nil {
		uc := *c.UserCookie
		cp.UserCookie = &uc
	}

	if c.Attributes != nil {
		cp.Attributes = make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			cp.Attributes[k] = v
		}
	}

	return cp
}
