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

import (
	"bytes"
	"encoding/gob"

	"github.com/sabouaram/icerpc/rpcerr"
)

// Result is the gob-encoded shape of a Response's payload: either the bytes
// a Servant returned, or the RemoteError it failed with.
type Result struct {
	Value []byte
	Err   *RemoteError
}

// Ok wraps a successful Servant return value.
func Ok(value []byte) Result {
	return Result{Value: value}
}

// Fail wraps a Servant failure.
func Fail(err *RemoteError) Result {
	return Result{Err: err}
}

// Unwrap turns the Result back into the (value, error) pair Go code expects.
func (r Result) Unwrap() ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Value, nil
}

// EncodeResult gob-encodes a Result for placement in a Response's payload.
func EncodeResult(r Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, rpcerr.New(rpcerr.ErrEncodeFrame, "failed to encode servant result", err)
	}
	return buf.Bytes(), nil
}

// DecodeResult reverses EncodeResult.
func DecodeResult(data []byte) (Result, error) {
	var r Result
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return Result{}, rpcerr.New(rpcerr.ErrDecodeFrame, "failed to decode servant result", err)
	}
	return r, nil
}
