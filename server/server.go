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

// Package server runs the adapter-side accept loop: one servant registry and
// one adapter register shared across every accepted connection, each handed
// off to its own adapter.Adapter goroutine.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sabouaram/icerpc/adapter"
	"github.com/sabouaram/icerpc/adapterregister"
	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/freeze"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/registry"
	"github.com/sabouaram/icerpc/rpcerr"
)

// Server listens for adapter connections and dispatches each against a
// shared servant registry. The zero value is not usable; build one with New.
type Server struct {
	cfg config.Server
	log logger.Logger

	sr *registry.Registry
	ar *adapterregister.Register

	mu       sync.Mutex
	listener net.Listener
	running  bool

	openConns int64
}

// New builds a Server from cfg. db backs the servant registry's passivation
// store; callers typically open it via freeze.OpenFileStorage or pass
// freeze.NewMemoryStorage() for PassivationMemory.
func New(cfg config.Server, db freeze.Storage, log logger.Logger) *Server {
	if log == nil {
		log = logger.New(cfg.Level(), nil)
	}

	return &Server{
		cfg: cfg,
		log: log,
		sr:  registry.New(cfg.EvictorCapacity, db, log),
		ar:  adapterregister.New(),
	}
}

// ServantRegistry returns the registry embedding applications enroll
// servants and rehydrators into before calling Listen.
func (s *Server) ServantRegistry() *registry.Registry { return s.sr }

// AdapterRegister returns the register a caller can Send a Notice broadcast
// through once the server is listening.
func (s *Server) AdapterRegister() *adapterregister.Register { return s.ar }

// Addr returns the listener's bound address, or nil if Listen has not yet
// bound one. Useful when Address configures an ephemeral port ("127.0.0.1:0").
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning reports whether Listen is currently accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// OpenConnections returns the number of adapter connections currently being
// served.
func (s *Server) OpenConnections() int64 {
	return atomic.LoadInt64(&s.openConns)
}

// Listen binds the configured address and accepts connections until ctx is
// cancelled or Shutdown is called. It always returns once the listener is
// closed.
func (s *Server) Listen(ctx context.Context) error {
	network := s.cfg.Network
	if network == "" {
		network = "tcp"
	}

	ln, err := net.Listen(network, s.cfg.Address)
	if err != nil {
		return rpcerr.ErrServerAddress.Error(err)
	}

	if s.cfg.TLS.Enabled {
		tlsCfg, err := s.cfg.TLS.ServerTLSConfig()
		if err != nil {
			_ = ln.Close()
			return err
		}
		ln = tls.NewListener(ln, tlsCfg)
	}

	s.mu.Lock()
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	s.ar.SetAccept(true)
	s.log.Info("server listening", logger.Fields{"network": network, "address": s.cfg.Address})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.ar.SetAccept(false)
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.Info("accept loop stopping", logger.Fields{"error": err.Error()})
				return err
			}
		}

		if s.cfg.MaxConnections > 0 && s.ar.Count() >= s.cfg.MaxConnections {
			s.log.Warning("rejecting connection, server at capacity", logger.Fields{"remote": conn.RemoteAddr().String()})
			_ = conn.Close()
			continue
		}

		id := uuid.NewString()

		atomic.AddInt64(&s.openConns, 1)
		a := adapter.New(id, s.sr, s.ar, s.cfg.AdmissionWeight, s.log)

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer atomic.AddInt64(&s.openConns, -1)

			if err := a.Run(ctx, c, s.cfg.NoticeBufferSize); err != nil {
				s.log.Debug("adapter exited", logger.Fields{"connection_id": id, "error": err.Error()})
			}
		}(conn)
	}
}

// Shutdown stops accepting new connections by closing the listener. Already
// accepted connections run to completion; cancel the context passed to
// Listen to force them closed too.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		return rpcerr.ErrServerClosed.Error()
	}

	return ln.Close()
}
