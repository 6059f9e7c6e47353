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

// Client is the full configuration of a terminal: the peer to dial, the
// correlation token pool size, and the reconnect/retry tunables.
type Client struct {
	Network string `mapstructure:"network" json:"network" yaml:"network"`
	// Address is the adapter's listen address to dial.
	Address string `mapstructure:"address" json:"address" yaml:"address"`

	TLS TLS `mapstructure:"tls" json:"tls" yaml:"tls"`

	// TokenPoolSize bounds how many Requests this terminal may have
	// in flight at once, waiting on a Response.
	TokenPoolSize int `mapstructure:"token_pool_size" json:"token_pool_size" yaml:"token_pool_size"`

	// CallbackMapCapacity bounds how many InvokeWithCallback calls this
	// terminal may have outstanding at once, waiting on a callback.
	CallbackMapCapacity int `mapstructure:"callback_pool_size" json:"callback_pool_size" yaml:"callback_pool_size"`

	// CallTimeout bounds how long Invoke waits for a Response before
	// returning ErrTerminalTimeout.
	CallTimeout duration.Duration `mapstructure:"call_timeout" json:"call_timeout" yaml:"call_timeout"`

	// ConnectTimeout bounds a single dial attempt, including the TLS
	// handshake when TLS is enabled.
	ConnectTimeout duration.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`

	// TickInterval is the terminal's background housekeeping period: each
	// tick fails InvokeWithCallback calls whose timeout has passed. The tick
	// does not reconnect; a dropped connection is redialled on the next send
	// when ReconnectOnSend is set.
	TickInterval duration.Duration `mapstructure:"tick_interval" json:"tick_interval" yaml:"tick_interval"`

	// ReconnectOnSend makes Report/Invoke transparently redial once on a
	// broken connection instead of failing the call outright.
	ReconnectOnSend bool `mapstructure:"reconnect_on_send" json:"reconnect_on_send" yaml:"reconnect_on_send"`

	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
}

// DefaultClient returns the configuration used when no file or flag
// overrides a given field.
func DefaultClient() Client {
	return Client{
		Network:             "tcp",
		TokenPoolSize:       2,
		CallbackMapCapacity: 2,
		CallTimeout:         duration.Seconds(5),
		ConnectTimeout:      duration.Seconds(5),
		TickInterval:        duration.Seconds(1),
		ReconnectOnSend:     true,
		LogLevel:            "info",
	}
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return rpcerr.ErrTerminalNoConnection.Errorf("address is empty")
	}

	if c.TokenPoolSize <= 0 {
		return rpcerr.ErrConfigInvalid.Errorf("token_pool_size must be positive, got %d", c.TokenPoolSize)
	}

	if c.CallbackMapCapacity <= 0 {
		return rpcerr.ErrConfigInvalid.Errorf("callback_pool_size must be positive, got %d", c.CallbackMapCapacity)
	}

	if err := c.TLS.validate(); err != nil {
		return err
	}

	return nil
}

func (c Client) Level() logger.Level {
	return logger.ParseLevel(c.LogLevel)
}
