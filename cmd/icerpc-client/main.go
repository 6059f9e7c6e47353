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

// Command icerpc-client is a small manual-testing terminal: it connects to
// an adapter and sends one watch-servant request, printing the reply.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/logger"
	"github.com/sabouaram/icerpc/terminal"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var payload string

	cmd := &cobra.Command{
		Use:   "icerpc-client",
		Short: "Send a single request to an icerpc server and print its response",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, payload)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a client config file (yaml, json or toml)")
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "request payload to send to the watch servant")

	return cmd
}

func run(ctx context.Context, configPath, payload string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return fmt.Errorf("loading client config: %w", err)
	}

	log := logger.New(cfg.Level(), os.Stdout)
	term := terminal.New(cfg, nil, log)

	if err := term.ConnectTo(ctx, cfg.Address); err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Address, err)
	}
	defer term.Disconnect()

	reply, err := term.Invoke(ctx, nil, nil, []byte(payload))
	if err != nil {
		return fmt.Errorf("invoking watch servant: %w", err)
	}

	fmt.Println(string(reply))
	return nil
}
