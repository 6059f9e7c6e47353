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

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/sabouaram/icerpc/duration"
	"github.com/sabouaram/icerpc/rpcerr"
)

// newViper returns a viper instance that reads ICERPC_-prefixed environment
// variables (e.g. ICERPC_ADDRESS for "address") on top of whatever file is
// loaded, with nested keys ("tls.cert_file") addressed via underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("icerpc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper, out interface{}) error {
	return v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		duration.ViperDecoderHook(),
	)))
}

// LoadServer reads a server configuration from path (any format viper
// supports: json, yaml, toml, ...), layering it over DefaultServer and
// environment overrides, and validates the result.
func LoadServer(path string) (Server, error) {
	cfg, _, err := loadServer(path)
	return cfg, err
}

// WatchServer loads a server configuration the same way LoadServer does, then
// keeps watching path for changes (via fsnotify, through viper) for as long
// as the process runs. Each time the file changes on disk, the configuration
// is re-decoded and re-validated; onChange only fires for a config that
// passes validation, so a transient half-written file never reaches it.
func WatchServer(path string, onChange func(Server)) (Server, error) {
	cfg, v, err := loadServer(path)
	if err != nil {
		return Server{}, err
	}

	if path == "" || onChange == nil {
		return cfg, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded := DefaultServer()
		if err := decode(v, &reloaded); err != nil {
			return
		}
		if err := reloaded.Validate(); err != nil {
			return
		}
		onChange(reloaded)
	})
	v.WatchConfig()

	return cfg, nil
}

func loadServer(path string) (Server, *viper.Viper, error) {
	cfg := DefaultServer()

	v := newViper()
	applyServerDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Server{}, nil, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to read server config file", err)
		}
	}

	if err := decode(v, &cfg); err != nil {
		return Server{}, nil, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to decode server config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, nil, err
	}

	return cfg, v, nil
}

// LoadClient reads a client configuration the same way LoadServer does.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

	v := newViper()
	applyClientDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Client{}, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to read client config file", err)
		}
	}

	if err := decode(v, &cfg); err != nil {
		return Client{}, rpcerr.New(rpcerr.ErrConfigInvalid, "failed to decode client config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Client{}, err
	}

	return cfg, nil
}

func applyServerDefaults(v *viper.Viper, d Server) {
	v.SetDefault("network", d.Network)
	v.SetDefault("address", d.Address)
	v.SetDefault("max_connections", d.MaxConnections)
	v.SetDefault("admission_weight", d.AdmissionWeight)
	v.SetDefault("evictor_capacity", d.EvictorCapacity)
	v.SetDefault("passivation_backend", string(d.PassivationBackend))
	v.SetDefault("passivation_file_path", d.PassivationFilePath)
	v.SetDefault("notice_buffer_size", d.NoticeBufferSize)
	v.SetDefault("dispatch_timeout", d.DispatchTimeout.String())
	v.SetDefault("log_level", d.LogLevel)
}

func applyClientDefaults(v *viper.Viper, d Client) {
	v.SetDefault("network", d.Network)
	v.SetDefault("address", d.Address)
	v.SetDefault("token_pool_size", d.TokenPoolSize)
	v.SetDefault("callback_pool_size", d.CallbackMapCapacity)
	v.SetDefault("call_timeout", d.CallTimeout.String())
	v.SetDefault("connect_timeout", d.ConnectTimeout.String())
	v.SetDefault("tick_interval", d.TickInterval.String())
	v.SetDefault("reconnect_on_send", d.ReconnectOnSend)
	v.SetDefault("log_level", d.LogLevel)
}
