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

package servant

import "fmt"

// RemoteError is an error reported by the serving side and carried back to
// the caller inside a Response. A plain Go error can't survive a gob
// round-trip, so a Servant's failure is represented with this concrete type
// instead, the way rpcerr.Error represents this runtime's own local
// failures.
type RemoteError struct {
	// NotSerializable marks the case where a Servant was asked to Dump
	// itself but doesn't implement Dumper.
	NotSerializable bool
	Message         string
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	if e.NotSerializable {
		return "servant does not support serialization"
	}
	return e.Message
}

// ErrNotSerializable is returned by Dump for a Servant without a Dumper
// implementation.
var ErrNotSerializable = &RemoteError{NotSerializable: true}

// NewRemoteError builds a RemoteError carrying a formatted message.
func NewRemoteError(format string, args ...interface{}) *RemoteError {
	return &RemoteError{Message: fmt.Sprintf(format, args...)}
}
