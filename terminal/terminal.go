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

// Package terminal is the client side of a connection: it dials an adapter,
// correlates Requests with their Responses through a pool of tokens (for
// the synchronous Invoke) or a callback map (for InvokeWithCallback), and
// delivers server-initiated Notice records to an optional NotifyServant.
//
// Unlike the adapter side, a Terminal is meant to survive the connection
// dropping out from under it: when Client.ReconnectOnSend is set, Report and
// Invoke transparently redial before sending instead of failing outright.
package terminal

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/rpcerr"
	"github.com/sabouaram/icerpc/servant"
	"github.com/sabouaram/icerpc/wire"
)

type token struct {
	result chan servant.Result
}

type callbackEntry struct {
	start    time.Time
	timeout  time.Duration
	oid      *oid.Oid
	callback func(*oid.Oid, servant.Result)
}

// Terminal is safe for concurrent use. The zero value is not usable; build
// one with New.
type Terminal struct {
	cfg    config.Client
	log    logger.Logger
	notify servant.NotifyServant

	mu          sync.Mutex
	conn        net.Conn
	out         chan wire.Record
	connID      string
	reqID       uint64
	reportID    uint64
	tokenPool   []*token
	tokenMap    map[uint64]*token
	callbackMap map[uint64]*callbackEntry
	cancelRun   context.CancelFunc
	runDone     chan struct{}
}

// New returns a disconnected Terminal. notify may be nil if the caller does
// not care about server-initiated Notice traffic.
func New(cfg config.Client, notify servant.NotifyServant, log logger.Logger) *Terminal {
	if log == nil {
		log = logger.Discard()
	}

	pool := make([]*token, cfg.TokenPoolSize)
	for i := range pool {
		pool[i] = &token{result: make(chan servant.Result, 1)}
	}

	return &Terminal{
		cfg:         cfg,
		log:         log,
		notify:      notify,
		tokenPool:   pool,
		tokenMap:    make(map[uint64]*token),
		callbackMap: make(map[uint64]*callbackEntry),
	}
}

// ConnId returns the identifier of the current connection, or "" when
// disconnected.
func (t *Terminal) ConnId() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connID
}

// Connected reports whether the terminal currently holds a live connection.
func (t *Terminal) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// ConnectTo dials addr and starts the terminal's read/write/housekeeping
// loop in the background. Disconnect or cancelling ctx tears it down.
func (t *Terminal) ConnectTo(ctx context.Context, addr string) error {
	conn, err := t.dial(addr)
	if err != nil {
		return err
	}
	t.adopt(ctx, conn)
	return nil
}

func (t *Terminal) dial(addr string) (net.Conn, error) {
	network := t.cfg.Network
	if network == "" {
		network = "tcp"
	}

	dialer := net.Dialer{Timeout: t.cfg.ConnectTimeout.Time()}
	if t.cfg.TLS.Enabled {
		tlsCfg, err := t.cfg.TLS.ClientTLSConfig()
		if err != nil {
			return nil, err
		}
		return tls.DialWithDialer(&dialer, network, addr, tlsCfg)
	}
	return dialer.Dial(network, addr)
}

func (t *Terminal) adopt(parent context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(parent)
	out := make(chan wire.Record, 64)
	done := make(chan struct{})

	t.mu.Lock()
	t.conn = conn
	t.out = out
	t.connID = conn.LocalAddr().String()
	t.cancelRun = cancel
	t.runDone = done
	t.mu.Unlock()

	go t.run(ctx, conn, out, done)
}

// run owns conn until ctx is cancelled or a frame-level error occurs.
func (t *Terminal) run(ctx context.Context, conn net.Conn, out chan wire.Record, done chan struct{}) {
	defer close(done)
	defer conn.Close()
	defer t.clean(conn)

	dec := wire.NewDecoder(conn, 0)
	enc := wire.NewEncoder(conn)

	in := make(chan wire.Record)
	readErr := make(chan error, 1)
	go func() {
		defer close(in)
		for {
			rec, err := dec.Decode()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case in <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(t.cfg.TickInterval.Time())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case rec, ok := <-in:
			if !ok {
				err := <-readErr
				t.log.Info("terminal connection closed", logger.Fields{"error": err.Error()})
				return
			}
			if rec.Kind != wire.KindNotice && rec.Kind != wire.KindResponse {
				t.log.Warning("terminal closing, peer sent a record kind it can't handle", logger.Fields{"kind": rec.Kind.String()})
				return
			}
			t.received(rec)

		case rec := <-out:
			if err := enc.Encode(rec); err != nil {
				t.log.Warning("terminal write failed", logger.Fields{"error": err.Error()})
				return
			}

		case <-tick.C:
			t.sweepTimeouts()
		}
	}
}

// clean drops conn as the terminal's active connection if it still is one;
// a later ConnectTo may have already replaced it.
func (t *Terminal) clean(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == conn {
		t.conn = nil
		t.out = nil
		t.connID = ""
	}
}

// Disconnect tears down the current connection, if any.
func (t *Terminal) Disconnect() {
	t.mu.Lock()
	cancel := t.cancelRun
	done := t.runDone
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// ensureConnected reconnects to Client.Address when the connection has dropped and
// Client.ReconnectOnSend is set. Callers must not hold t.mu.
func (t *Terminal) ensureConnected(ctx context.Context) (chan<- wire.Record, error) {
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()

	if out != nil {
		return out, nil
	}

	if !t.cfg.ReconnectOnSend || t.cfg.Address == "" {
		return nil, rpcerr.ErrTerminalNoConnection.Error()
	}

	if err := t.ConnectTo(ctx, t.cfg.Address); err != nil {
		return nil, rpcerr.ErrTerminalNoConnection.Error(err)
	}

	t.mu.Lock()
	out = t.out
	t.mu.Unlock()

	return out, nil
}

// Report sends a fire-and-forget record to the ReportServant named by o.
func (t *Terminal) Report(ctx context.Context, o oid.Oid, payload []byte) error {
	out, err := t.ensureConnected(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.reportID++
	id := t.reportID
	t.mu.Unlock()

	rec := wire.NewReport(id, o, payload)
	select {
	case out <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke sends a request addressed at o (nil for the watch servant) and
// blocks until a Response arrives or ctx is done. If ctx carries no
// deadline, ctxRecord's Timeout (Client.CallTimeout when unset) bounds the
// wait.
func (t *Terminal) Invoke(ctx context.Context, ctxRecord *wire.Context, o *oid.Oid, payload []byte) ([]byte, error) {
	out, err := t.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	tok, ok := t.popToken()
	if !ok {
		t.mu.Unlock()
		return nil, rpcerr.ErrTerminalTokenPoolExhausted.Error()
	}
	t.reqID++
	id := t.reqID
	t.tokenMap[id] = tok
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.tokenMap, id)
		t.tokenPool = append(t.tokenPool, tok)
		t.mu.Unlock()
	}()

	rec := wire.NewRequest(id, ctxRecord, o, payload)
	select {
	case out <- rec:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	waitCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := t.cfg.CallTimeout.Time()
		if ctxRecord != nil && ctxRecord.Timeout > 0 {
			timeout = ctxRecord.Timeout
		}
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case result := <-tok.result:
		return result.Unwrap()
	case <-waitCtx.Done():
		return nil, rpcerr.ErrTerminalTimeout.Error()
	}
}

// InvokeWithCallback sends a request and returns immediately; cb runs from
// the terminal's internal goroutine once a Response arrives or the call
// times out per ctxRecord's timeout (Client.CallTimeout if unset). Returns
// ErrTerminalCallbackMapFull without sending anything once
// Client.CallbackMapCapacity outstanding callbacks are already pending.
func (t *Terminal) InvokeWithCallback(ctx context.Context, ctxRecord *wire.Context, o *oid.Oid, payload []byte, cb func(*oid.Oid, servant.Result)) error {
	out, err := t.ensureConnected(ctx)
	if err != nil {
		return err
	}

	timeout := t.cfg.CallTimeout.Time()
	if ctxRecord != nil && ctxRecord.Timeout > 0 {
		timeout = ctxRecord.Timeout
	}

	t.mu.Lock()
	if len(t.callbackMap) >= t.cfg.CallbackMapCapacity {
		t.mu.Unlock()
		return rpcerr.ErrTerminalCallbackMapFull.Error()
	}
	t.reqID++
	id := t.reqID
	t.callbackMap[id] = &callbackEntry{start: time.Now(), timeout: timeout, oid: o, callback: cb}
	t.mu.Unlock()

	rec := wire.NewRequest(id, ctxRecord, o, payload)
	select {
	case out <- rec:
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.callbackMap, id)
		t.mu.Unlock()
		return ctx.Err()
	}
}

// popToken must be called with t.mu held.
func (t *Terminal) popToken() (*token, bool) {
	n := len(t.tokenPool)
	if n == 0 {
		return nil, false
	}
	tok := t.tokenPool[n-1]
	t.tokenPool = t.tokenPool[:n-1]
	return tok, true
}

func (t *Terminal) received(rec wire.Record) {
	switch rec.Kind {
	case wire.KindNotice:
		if t.notify != nil {
			t.notify.Serve(rec.Payload)
		}

	case wire.KindResponse:
		t.mu.Lock()
		tok, hasToken := t.tokenMap[rec.ID]
		cb, hasCallback := t.callbackMap[rec.ID]
		if hasCallback {
			delete(t.callbackMap, rec.ID)
		}
		t.mu.Unlock()

		result, err := servant.DecodeResult(rec.Payload)
		if err != nil {
			result = servant.Fail(servant.NewRemoteError("failed to decode response: %v", err))
		}

		switch {
		case hasToken:
			tok.result <- result
		case hasCallback:
			cb.callback(cb.oid, result)
		default:
			t.log.Warning("received a response with no matching token or callback", logger.Fields{"id": rec.ID})
		}

	default:
		t.log.Warning("terminal received a record kind it can't handle", logger.Fields{"kind": rec.Kind.String()})
	}
}

func (t *Terminal) sweepTimeouts() {
	now := time.Now()

	t.mu.Lock()
	var expired []*callbackEntry
	for id, entry := range t.callbackMap {
		if now.Sub(entry.start) >= entry.timeout {
			expired = append(expired, entry)
			delete(t.callbackMap, id)
		}
	}
	t.mu.Unlock()

	for _, entry := range expired {
		entry.callback(entry.oid, servant.Fail(servant.NewRemoteError("timeout in callback.")))
	}
}
