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

// Command icerpc-server runs a standalone adapter-side process: it loads a
// config.Server, opens the configured passivation store, and listens until
// interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/freeze"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "icerpc-server",
		Short: "Run the icerpc adapter-side server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a server config file (yaml, json or toml)")

	return cmd
}

func run(ctx context.Context, configPath string) error {
	var log logger.Logger

	cfg, err := config.WatchServer(configPath, func(reloaded config.Server) {
		log.Warning("server config file changed on disk; restart to apply it", logger.Fields{"address": reloaded.Address})
	})
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	log = logger.New(cfg.Level(), os.Stdout)

	db, err := openPassivationStore(cfg)
	if err != nil {
		return fmt.Errorf("opening passivation store: %w", err)
	}

	srv := server.New(cfg, db, log)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("starting icerpc server", logger.Fields{"address": cfg.Address})
	return srv.Listen(ctx)
}

func openPassivationStore(cfg config.Server) (freeze.Storage, error) {
	switch cfg.PassivationBackend {
	case config.PassivationFile:
		return freeze.OpenFileStorage(cfg.PassivationFilePath)
	default:
		return freeze.NewMemoryStorage(), nil
	}
}
