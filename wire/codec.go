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

package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/sabouaram/icerpc/rpcerr"
)

// DefaultMaxFrameSize bounds a single encoded Record, guarding a reader
// against a corrupt or hostile length prefix demanding an enormous
// allocation.
const DefaultMaxFrameSize = 16 << 20 // 16 MiB

// Encoder writes Records to an underlying stream as a 4-byte big-endian
// length prefix followed by that many bytes of gob-encoded Record, mirroring
// the length-prefixed framing codecs this runtime's peers already expect.
type Encoder struct {
	w   io.Writer
	buf bytes.Buffer
}

// NewEncoder returns an Encoder writing framed Records to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one framed Record. Safe to call repeatedly on the same
// Encoder from a single goroutine; callers needing concurrent writers must
// serialize their own access.
func (e *Encoder) Encode(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	e.buf.Reset()
	if err := gob.NewEncoder(&e.buf).Encode(r); err != nil {
		return rpcerr.New(rpcerr.ErrEncodeFrame, "failed to gob-encode record", err)
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(e.buf.Len()))

	if _, err := e.w.Write(prefix[:]); err != nil {
		return rpcerr.New(rpcerr.ErrEncodeFrame, "failed to write frame length", err)
	}

	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return rpcerr.New(rpcerr.ErrEncodeFrame, "failed to write frame body", err)
	}

	return nil
}

// Decoder reads Records framed the way Encoder writes them.
type Decoder struct {
	r           io.Reader
	maxFrame    uint32
	lengthBytes [4]byte
}

// NewDecoder returns a Decoder reading framed Records from r, rejecting any
// frame larger than maxFrame bytes. A maxFrame of zero uses
// DefaultMaxFrameSize.
func NewDecoder(r io.Reader, maxFrame uint32) *Decoder {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &Decoder{r: r, maxFrame: maxFrame}
}

// Decode reads and returns the next framed Record, blocking until one is
// available or the underlying reader errors (io.EOF on a clean peer close).
func (d *Decoder) Decode() (Record, error) {
	if _, err := io.ReadFull(d.r, d.lengthBytes[:]); err != nil {
		return Record{}, err
	}

	n := binary.BigEndian.Uint32(d.lengthBytes[:])
	if n > d.maxFrame {
		return Record{}, rpcerr.ErrFrameTooLarge.Errorf("frame of %d bytes exceeds maximum of %d", n, d.maxFrame)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return Record{}, fmt.Errorf("reading frame body: %w", err)
	}

	var r Record
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&r); err != nil {
		return Record{}, rpcerr.New(rpcerr.ErrDecodeFrame, "failed to gob-decode record", err)
	}

	if err := r.Validate(); err != nil {
		return Record{}, err
	}

	return r, nil
}
