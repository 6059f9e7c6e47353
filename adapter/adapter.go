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

// Package adapter runs one TCP connection's read/dispatch/write loop: frames
// in, frames out, and a bounded number of Request/Report dispatches against
// a servant registry running concurrently in between.
package adapter

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/semaphore"

	"github.com/sabouaram/icerpc/adapterregister"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/registry"
	"github.com/sabouaram/icerpc/rpcerr"
	"github.com/sabouaram/icerpc/servant"
	"github.com/sabouaram/icerpc/wire"
)

// Adapter owns one accepted connection from dial to close.
type Adapter struct {
	id  string
	sr  *registry.Registry
	ar  *adapterregister.Register
	sem *semaphore.Weighted
	log logger.Logger
}

// New returns an Adapter for conn, identified by id in the adapter register.
// maxServeCount bounds how many Report/Request dispatches this connection
// may have in flight at once. A record that arrives while every slot is
// taken is not queued: a Request is answered at once with an out-of-service
// error Response and a Report is dropped.
func New(id string, sr *registry.Registry, ar *adapterregister.Register, maxServeCount int64, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	if maxServeCount <= 0 {
		maxServeCount = 1
	}

	return &Adapter{
		id:  id,
		sr:  sr,
		ar:  ar,
		sem: semaphore.NewWeighted(maxServeCount),
		log: log,
	}
}

// Run owns conn until ctx is cancelled, the peer closes the connection, or a
// frame-level error occurs. It always returns after conn is no longer in use
// by this Adapter.
func (a *Adapter) Run(ctx context.Context, conn net.Conn, noticeBuffer int) error {
	defer conn.Close()

	log := a.log.WithFields(logger.Fields{"connection_id": a.id, "remote": conn.RemoteAddr().String()})
	log.Info("adapter connected", nil)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan wire.Record, noticeBuffer)
	if err := a.ar.Insert(a.id, out); err != nil {
		return err
	}
	defer a.ar.Remove(a.id)

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

	for {
		select {
		case <-ctx.Done():
			log.Info("adapter stopping, context cancelled", nil)
			return ctx.Err()

		case rec, ok := <-in:
			if !ok {
				err := <-readErr
				log.Info("adapter closing, peer disconnected", logger.Fields{"error": err.Error()})
				return nil
			}
			if rec.Kind != wire.KindRequest && rec.Kind != wire.KindReport {
				log.Warning("adapter closing, peer sent a record kind it can't dispatch", logger.Fields{"kind": rec.Kind.String()})
				return rpcerr.ErrUnknownRecordKind.Errorf("adapter received a %s record", rec.Kind)
			}
			if !a.sem.TryAcquire(1) {
				a.outOfService(ctx, log, rec, out)
				continue
			}
			go a.serve(ctx, log, rec, out)

		case rec := <-out:
			if err := enc.Encode(rec); err != nil {
				log.Warning("adapter write failed", logger.Fields{"error": err.Error()})
				return err
			}
		}
	}
}

// serve dispatches a single Report or Request record against the registry
// and, for a Request, pushes the Response onto out. A panicking servant
// degrades to a RemoteError reply instead of taking the whole connection
// down with it.
func (a *Adapter) serve(ctx context.Context, log logger.Logger, rec wire.Record, out chan<- wire.Record) {
	defer a.sem.Release(1)

	switch rec.Kind {
	case wire.KindReport:
		a.serveReport(log, rec)

	case wire.KindRequest:
		resp := a.serveRequest(log, rec)
		select {
		case out <- resp:
		case <-ctx.Done():
		}

	default:
		log.Warning("adapter received a record kind it can't dispatch", logger.Fields{"kind": rec.Kind.String()})
	}
}

// outOfService handles a record that arrived while the admission counter is
// already at zero. A Request gets a synthesized failure response instead of
// being dispatched; a Report has nowhere to reply to, so it is logged and
// dropped.
func (a *Adapter) outOfService(ctx context.Context, log logger.Logger, rec wire.Record, out chan<- wire.Record) {
	if rec.Kind != wire.KindRequest {
		log.Warning("dropping record, adapter is out of service", logger.Fields{"kind": rec.Kind.String()})
		return
	}

	payload, err := servant.EncodeResult(servant.Fail(servant.NewRemoteError(rpcerr.ErrAdapterOutOfService.Message())))
	if err != nil {
		log.Error("failed to encode out-of-service result", nil, err)
		return
	}

	resp := wire.NewResponse(rec.ID, rec.Oid, payload)
	select {
	case out <- resp:
	case <-ctx.Done():
	}
}

func (a *Adapter) serveReport(log logger.Logger, rec wire.Record) {
	if rec.Oid == nil {
		log.Warning("report record is missing its oid", nil)
		return
	}

	s, ok := a.sr.FindReportServant(*rec.Oid)
	if !ok {
		log.Warning("report servant does not exist", logger.Fields{"oid": rec.Oid.String()})
		return
	}

	defer recoverInto(log, "report servant panicked")
	s.Serve(rec.Payload)
}

func (a *Adapter) serveRequest(log logger.Logger, rec wire.Record) (resp wire.Record) {
	result := a.invokeServant(log, rec)

	payload, err := servant.EncodeResult(result)
	if err != nil {
		log.Error("failed to encode servant result", nil, err)
		payload, _ = servant.EncodeResult(servant.Fail(servant.NewRemoteError("internal error encoding result")))
	}

	return wire.NewResponse(rec.ID, rec.Oid, payload)
}

func (a *Adapter) invokeServant(log logger.Logger, rec wire.Record) (result servant.Result) {
	oidField := ""
	if rec.Oid != nil {
		oidField = rec.Oid.String()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("servant panicked while serving a request", logger.Fields{"oid": oidField}, fmt.Errorf("%v", r))
			result = servant.Fail(servant.NewRemoteError("servant panicked: %v", r))
		}
	}()

	if rec.Oid != nil {
		s, ok := a.sr.FindServant(*rec.Oid)
		if !ok {
			return servant.Fail(servant.NewRemoteError("%s doesn't exist.", rec.Oid.String()))
		}
		if rec.Ctx != nil {
			rec.Ctx.ConnectionID = a.id
		}
		return servant.Ok(s.Serve(rec.Ctx, rec.Payload))
	}

	w, ok := a.sr.WatchServant()
	if !ok {
		return servant.Fail(servant.NewRemoteError("watch servant doesn't exist."))
	}
	return servant.Ok(w.Serve(rec.Payload))
}

func recoverInto(log logger.Logger, message string) {
	if r := recover(); r != nil {
		log.Error(message, nil, fmt.Errorf("%v", r))
	}
}
