/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2020 Nicolas JUHEL
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

// Package rpcerr provides a coded error taxonomy for the runtime's own
// failures (registry, adapter, terminal, configuration) as opposed to
// RemoteError, which travels over the wire as a servant's reported failure.
package rpcerr

import (
	"fmt"
	"sync"
)

// Code classifies an error the way an HTTP status would, grouped by package.
type Code uint16

const (
	UnknownError Code = 0

	// One hundred-wide range per package, mirroring the reference codebase's
	// per-package error code convention.
	MinWire       Code = 100
	MinEvictor    Code = 200
	MinFreeze     Code = 300
	MinServant    Code = 400
	MinRegistry   Code = 500
	MinAdapter    Code = 600
	MinServer     Code = 700
	MinTerminal   Code = 800
	MinConfig     Code = 900
)

const (
	ErrDecodeFrame Code = MinWire + iota
	ErrEncodeFrame
	ErrFrameTooLarge
	ErrUnknownRecordKind
)

const (
	ErrEvictorFull Code = MinEvictor + iota
	ErrEvictorUnknownNode
)

const (
	ErrFreezeDuplicateCategory Code = MinFreeze + iota
	ErrFreezeNoRehydrator
	ErrFreezeMiss
	ErrFreezeStoreIO
)

const (
	ErrServantNotSerializable Code = MinServant + iota
	ErrServantDumpFailed
)

const (
	ErrRegistryNoWatchServant Code = MinRegistry + iota
	ErrRegistryNotFound
	ErrRegistryDuplicateOid
)

const (
	ErrAdapterClosed Code = MinAdapter + iota
	ErrAdapterSendFull
	ErrAdapterBadPasscode
	ErrAdapterOutOfService
)

const (
	ErrServerAddress Code = MinServer + iota
	ErrServerAtCapacity
	ErrServerClosed
)

const (
	ErrTerminalNoConnection Code = MinTerminal + iota
	ErrTerminalTimeout
	ErrTerminalTokenPoolExhausted
	ErrTerminalClosed
	ErrTerminalCallbackMapFull
)

const (
	ErrConfigInvalid Code = MinConfig + iota
)

var (
	mu       sync.RWMutex
	messages = map[Code]string{
		ErrDecodeFrame:                "failed to decode wire frame",
		ErrEncodeFrame:                "failed to encode wire frame",
		ErrFrameTooLarge:              "frame exceeds configured maximum size",
		ErrUnknownRecordKind:          "unknown record kind on wire",
		ErrEvictorFull:                "evictor list is at capacity",
		ErrEvictorUnknownNode:         "evictor node id is unknown to this list",
		ErrFreezeDuplicateCategory:    "category is already enrolled in freeze store",
		ErrFreezeNoRehydrator:         "no rehydrator registered for category",
		ErrFreezeMiss:                 "oid does not exist in freeze store",
		ErrFreezeStoreIO:              "freeze store I/O failure",
		ErrServantNotSerializable:     "servant does not support serialization",
		ErrServantDumpFailed:          "servant dump failed",
		ErrRegistryNoWatchServant:     "no watch servant registered",
		ErrRegistryNotFound:           "servant not found",
		ErrRegistryDuplicateOid:       "oid is already registered",
		ErrAdapterClosed:              "adapter connection is closed",
		ErrAdapterSendFull:            "adapter send queue is full",
		ErrAdapterBadPasscode:         "adapter register passcode mismatch",
		ErrAdapterOutOfService:        "serve count is 0",
		ErrServerAddress:              "invalid server listen address",
		ErrServerAtCapacity:           "server has reached its connection limit",
		ErrServerClosed:               "server is shutting down",
		ErrTerminalNoConnection:       "terminal is not connected",
		ErrTerminalTimeout:            "timed_out.",
		ErrTerminalTokenPoolExhausted: "token pool is empty.",
		ErrTerminalClosed:             "terminal is closed",
		ErrTerminalCallbackMapFull:    "callback map is full.",
		ErrConfigInvalid:              "invalid configuration",
	}
)

// Message returns the registered text for code, or a generic fallback.
func (c Code) Message() string {
	mu.RLock()
	defer mu.RUnlock()

	if m, ok := messages[c]; ok {
		return m
	}

	return fmt.Sprintf("unregistered error code %d", uint16(c))
}

// RegisterMessage overrides or adds the text for a code. Intended for callers
// embedding this package and extending the taxonomy with their own ranges.
func RegisterMessage(c Code, message string) {
	mu.Lock()
	defer mu.Unlock()

	messages[c] = message
}

// Error builds a coded Error carrying this code's registered message.
func (c Code) Error(parent ...error) Error {
	return New(c, c.Message(), parent...)
}

// Errorf builds a coded Error with a formatted message instead of the
// registered one.
func (c Code) Errorf(format string, args ...interface{}) Error {
	return New(c, fmt.Sprintf(format, args...))
}
