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

package config

import (
	"strings"

	"github.com/sabouaram/icerpc/duration"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/rpcerr"
)

// PassivationBackend names a storage implementation for the servant
// registry's freeze store.
type PassivationBackend string

const (
	// PassivationMemory keeps frozen servants in a process-local map; state
	// is lost on restart. This is the default.
	PassivationMemory PassivationBackend = "memory"
	// PassivationFile persists frozen servants to a single gob-encoded file
	// on disk, surviving a restart.
	PassivationFile PassivationBackend = "file"
)

// Server is the full configuration of an adapter-side process: the
// listener, the servant registry's eviction and passivation policy, and the
// notice broadcast channel's buffering.
type Server struct {
	// Network is the dial network, "tcp" or "tcp4"/"tcp6". Defaults to "tcp".
	Network string `mapstructure:"network" json:"network" yaml:"network"`
	// Address is the listen address, e.g. ":4061" or "0.0.0.0:4061".
	Address string `mapstructure:"address" json:"address" yaml:"address"`

	TLS TLS `mapstructure:"tls" json:"tls" yaml:"tls"`

	// MaxConnections caps concurrently accepted adapter connections. Zero
	// means unbounded.
	MaxConnections int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections"`
	// AdmissionWeight is the per-connection concurrent-dispatch semaphore
	// weight handed to each adapter.
	AdmissionWeight int64 `mapstructure:"admission_weight" json:"admission_weight" yaml:"admission_weight"`

	// EvictorCapacity bounds how many active servants the registry keeps
	// before it starts passivating the least recently used one.
	EvictorCapacity int `mapstructure:"evictor_capacity" json:"evictor_capacity" yaml:"evictor_capacity"`

	PassivationBackend PassivationBackend `mapstructure:"passivation_backend" json:"passivation_backend" yaml:"passivation_backend"`
	// PassivationFilePath is the gob store path, required when
	// PassivationBackend is PassivationFile.
	PassivationFilePath string `mapstructure:"passivation_file_path" json:"passivation_file_path" yaml:"passivation_file_path"`

	// NoticeBufferSize sizes each adapter connection's outbound channel. A
	// Notice broadcast that finds a connection's channel full skips that
	// connection; the connection itself stays open.
	NoticeBufferSize int `mapstructure:"notice_buffer_size" json:"notice_buffer_size" yaml:"notice_buffer_size"`

	// DispatchTimeout is decoded and defaulted with the rest of the
	// configuration. Neither the server nor the adapter reads it: a
	// Request dispatch runs until its servant returns.
	DispatchTimeout duration.Duration `mapstructure:"dispatch_timeout" json:"dispatch_timeout" yaml:"dispatch_timeout"`

	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
}

// DefaultServer returns the configuration used when no file or flag
// overrides a given field.
func DefaultServer() Server {
	return Server{
		Network:            "tcp",
		Address:            ":4061",
		MaxConnections:     10,
		AdmissionWeight:    3,
		EvictorCapacity:    5,
		PassivationBackend: PassivationMemory,
		NoticeBufferSize:   256,
		DispatchTimeout:    duration.Seconds(30),
		LogLevel:           "info",
	}
}

// Validate reports a configuration error describing the first field found
// to be unusable.
func (s Server) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return rpcerr.ErrServerAddress.Error()
	}

	if s.AdmissionWeight <= 0 {
		return rpcerr.ErrConfigInvalid.Errorf("admission_weight must be positive, got %d", s.AdmissionWeight)
	}

	if s.EvictorCapacity <= 0 {
		return rpcerr.ErrConfigInvalid.Errorf("evictor_capacity must be positive, got %d", s.EvictorCapacity)
	}

	switch s.PassivationBackend {
	case PassivationMemory:
	case PassivationFile:
		if strings.TrimSpace(s.PassivationFilePath) == "" {
			return rpcerr.ErrConfigInvalid.Errorf("passivation_backend is %q but passivation_file_path is empty", s.PassivationBackend)
		}
	default:
		return rpcerr.ErrConfigInvalid.Errorf("unknown passivation_backend %q", s.PassivationBackend)
	}

	if err := s.TLS.validate(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel, defaulting to logger.InfoLevel.
func (s Server) Level() logger.Level {
	return logger.ParseLevel(s.LogLevel)
}
