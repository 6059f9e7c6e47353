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
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/rpcerr"
)

// Kind discriminates the four record shapes that travel over the wire.
type Kind uint8

const (
	KindNotice Kind = iota
	KindReport
	KindRequest
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindNotice:
		return "Notice"
	case KindReport:
		return "Report"
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	default:
		return "Unknown"
	}
}

// Record is the single wire-level envelope. Only the fields relevant to Kind
// are meaningful; a Kind discriminated union expressed with one gob-friendly
// struct instead of four.
//
//   - Notice:   ID, Payload set. Oid and Ctx are nil.
//   - Report:   ID, Oid, Payload set.
//   - Request:  ID, Payload set; Oid nil addresses the registry's watch
//     servant, non-nil addresses a named servant; Ctx optional.
//   - Response: ID, Payload set; Oid mirrors the Request's Oid.
type Record struct {
	Kind    Kind
	ID      uint64
	Oid     *oid.Oid
	Ctx     *Context
	Payload []byte
}

// NewNotice builds a server-initiated broadcast record.
func NewNotice(id uint64, payload []byte) Record {
	return Record{Kind: KindNotice, ID: id, Payload: payload}
}

// NewReport builds a one-way, fire-and-forget client-to-server record
// addressed at a named ReportServant.
func NewReport(id uint64, o oid.Oid, payload []byte) Record {
	return Record{Kind: KindReport, ID: id, Oid: &o, Payload: payload}
}

// NewRequest builds a request-response record. o is nil to address the
// registry's watch servant instead of a named Servant.
func NewRequest(id uint64, ctx *Context, o *oid.Oid, payload []byte) Record {
	return Record{Kind: KindRequest, ID: id, Oid: o, Ctx: ctx, Payload: payload}
}

// NewResponse builds the reply to a Request, echoing its Oid.
func NewResponse(id uint64, o *oid.Oid, payload []byte) Record {
	return Record{Kind: KindResponse, ID: id, Oid: o, Payload: payload}
}

// Validate rejects a Record whose Oid presence doesn't match its Kind, the
// shape a decoder should refuse before handing the record to a dispatcher.
func (r Record) Validate() error {
	switch r.Kind {
	case KindNotice:
		if r.Oid != nil {
			return rpcerr.ErrUnknownRecordKind.Errorf("notice record carries an oid")
		}
	case KindReport:
		if r.Oid == nil {
			return rpcerr.ErrUnknownRecordKind.Errorf("report record is missing its oid")
		}
	case KindRequest, KindResponse:
		// Oid is legitimately nil (watch servant traffic).
	default:
		return rpcerr.ErrUnknownRecordKind.Errorf("unknown record kind %d", r.Kind)
	}

	return nil
}
