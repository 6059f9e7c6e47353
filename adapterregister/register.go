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

// Package adapterregister tracks every adapter currently connected to a
// server and broadcasts server-initiated Notice records to all of them. It
// is also where a server-side accept loop parks its "stop admitting new
// connections" switch.
package adapterregister

import (
	"github.com/sabouaram/icerpc/atomic"
	"github.com/sabouaram/icerpc/rpcerr"
	"github.com/sabouaram/icerpc/wire"
)

// defaultPasscode gates Clean against an accidental call: a caller needs to
// know this value to wipe the register, the same shallow guard the adapter
// registry has always used.
const defaultPasscode = 238

// Register tracks one outgoing channel per connected adapter, keyed by
// connection id, and hands out monotonically increasing Notice ids. Safe for
// concurrent use: the sender table and the accept switch are each their own
// lock-free container, so Insert racing a Clean/SetAccept call never
// deadlocks, at the cost of a connection occasionally slipping in the
// instant a shutdown starts (it is reaped by its own adapter loop).
type Register struct {
	passcode int
	noticeID atomic.Value[uint64]
	accept   atomic.Value[bool]
	senders  atomic.Map[string, chan<- wire.Record]
}

// New returns an empty Register, open for new connections.
func New() *Register {
	r := &Register{
		passcode: defaultPasscode,
		noticeID: atomic.NewValue[uint64](),
		accept:   atomic.NewValueDefault(true),
		senders:  atomic.NewMap[string, chan<- wire.Record](),
	}
	return r
}

// Clean wipes every tracked connection and closes the register to further
// admission, provided passcode matches. A mismatched passcode is a no-op, so
// a stray call from the wrong caller can't reset a live server by accident.
func (r *Register) Clean(passcode int) {
	if passcode != r.passcode {
		return
	}

	r.accept.Store(false)
	r.senders.Range(func(id string, _ chan<- wire.Record) bool {
		r.senders.Delete(id)
		return true
	})
}

// SetAccept flips whether Insert admits new connections.
func (r *Register) SetAccept(accept bool) {
	r.accept.Store(accept)
}

// Accepting reports whether the register currently admits new connections.
func (r *Register) Accepting() bool {
	return r.accept.Load()
}

// Insert tracks tx under connID so it receives future Notice broadcasts.
// Returns ErrAdapterClosed if the register is not currently accepting.
func (r *Register) Insert(connID string, tx chan<- wire.Record) error {
	if !r.accept.Load() {
		return rpcerr.ErrAdapterClosed.Error()
	}

	r.senders.Store(connID, tx)
	return nil
}

// Remove stops tracking connID. A no-op if connID is unknown.
func (r *Register) Remove(connID string) {
	r.senders.Delete(connID)
}

// Count returns the number of connections currently tracked.
func (r *Register) Count() int {
	return r.senders.Len()
}

// List returns the connection ids currently tracked, in no particular order.
func (r *Register) List() []string {
	out := make([]string, 0, r.senders.Len())
	r.senders.Range(func(id string, _ chan<- wire.Record) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Send assigns payload the next Notice id and broadcasts it to every tracked
// connection. A connection whose send channel is full is skipped rather than
// blocking the broadcast for the rest; the caller has no way to know which
// notices a slow adapter missed.
func (r *Register) Send(payload []byte) {
	var id uint64
	for {
		cur := r.noticeID.Load()
		id = cur + 1
		if r.noticeID.CompareAndSwap(cur, id) {
			break
		}
	}
	notice := wire.NewNotice(id, payload)

	r.senders.Range(func(_ string, tx chan<- wire.Record) bool {
		select {
		case tx <- notice:
		default:
		}
		return true
	})
}
