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

// Package config holds the file/flag-driven configuration for the server
// (adapter + registry) and client (terminal) sides of this runtime, loaded
// through viper so it can come from JSON, YAML, TOML or environment
// variables indifferently.
package config

import (
	"crypto/tls"

	"github.com/sabouaram/icerpc/rpcerr"
)

// TLS configures the optional transport-level encryption for a listener or
// outbound connection. Leaving Enabled false keeps the connection in plain
// TCP, which is the default and what every test in this repository uses.
type TLS struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	CertFile string `mapstructure:"cert_file" json:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" json:"key_file" yaml:"key_file"`
	// ServerName is used client-side to verify the peer certificate when it
	// does not match the dialed address (e.g. connecting through a proxy).
	ServerName string `mapstructure:"server_name" json:"server_name" yaml:"server_name"`
	// InsecureSkipVerify disables peer certificate verification. It exists
	// for local/dev testing only and is never set by the defaults.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

func (t TLS) validate() error {
	if !t.Enabled {
		return nil
	}

	if t.CertFile == "" || t.KeyFile == "" {
		return rpcerr.ErrConfigInvalid.Errorf("tls is enabled but cert_file/key_file are not both set")
	}

	return nil
}

// ServerTLSConfig builds a *tls.Config suitable for tls.Listen from the
// configured certificate pair. Returns nil, nil when TLS is disabled.
func (t TLS) ServerTLSConfig() (*tls.Config, error) {
	if !t.Enabled {
		return nil, nil
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to load tls certificate pair", err)
	}

	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}, nil
}

// ClientTLSConfig builds a *tls.Config suitable for tls.Dial. The
// certificate pair is optional client-side (mutual TLS); when absent only
// server verification material is set.
func (t TLS) ClientTLSConfig() (*tls.Config, error) {
	if !t.Enabled {
		return nil, nil
	}

	cfg := &tls.Config{
		ServerName:         t.ServerName,
		InsecureSkipVerify: t.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}

	if t.CertFile != "" && t.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to load tls certificate pair", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}
