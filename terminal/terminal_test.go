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

package terminal_test

import (
	"context"
	"net"
	"time"

	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/duration"
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/servant"
	"github.com/sabouaram/icerpc/terminal"
	"github.com/sabouaram/icerpc/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingNotify struct {
	ch chan []byte
}

func (n *recordingNotify) Serve(payload []byte) { n.ch <- payload }

func testClientConfig(addr string) config.Client {
	cfg := config.DefaultClient()
	cfg.Address = addr
	cfg.CallTimeout = duration.ParseDuration(300 * time.Millisecond)
	cfg.TickInterval = duration.ParseDuration(50 * time.Millisecond)
	cfg.ConnectTimeout = duration.ParseDuration(time.Second)
	return cfg
}

var _ = Describe("Terminal", func() {
	It("invokes a request and returns the decoded response", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()

			dec := wire.NewDecoder(conn, 0)
			enc := wire.NewEncoder(conn)
			rec, err := dec.Decode()
			if err != nil {
				return
			}
			payload, _ := servant.EncodeResult(servant.Ok([]byte("pong")))
			_ = enc.Encode(wire.NewResponse(rec.ID, rec.Oid, payload))
		}()

		term := terminal.New(testClientConfig(ln.Addr().String()), nil, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Expect(term.ConnectTo(ctx, ln.Addr().String())).To(Succeed())

		value, err := term.Invoke(ctx, nil, nil, []byte("ping"))
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal([]byte("pong")))
	})

	It("times out when no response arrives", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			dec := wire.NewDecoder(conn, 0)
			_, _ = dec.Decode() // read the request, never reply
			time.Sleep(time.Second)
		}()

		cfg := testClientConfig(ln.Addr().String())
		term := terminal.New(cfg, nil, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Expect(term.ConnectTo(ctx, ln.Addr().String())).To(Succeed())

		_, err = term.Invoke(ctx, nil, nil, []byte("ping"))
		Expect(err).To(HaveOccurred())
	})

	It("delivers a callback invocation asynchronously", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			dec := wire.NewDecoder(conn, 0)
			enc := wire.NewEncoder(conn)
			rec, err := dec.Decode()
			if err != nil {
				return
			}
			payload, _ := servant.EncodeResult(servant.Ok([]byte("async-pong")))
			_ = enc.Encode(wire.NewResponse(rec.ID, rec.Oid, payload))
		}()

		term := terminal.New(testClientConfig(ln.Addr().String()), nil, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(term.ConnectTo(ctx, ln.Addr().String())).To(Succeed())

		results := make(chan servant.Result, 1)
		Expect(term.InvokeWithCallback(ctx, nil, nil, []byte("ping"), func(o *oid.Oid, r servant.Result) {
			results <- r
		})).To(Succeed())

		var r servant.Result
		Eventually(results, time.Second).Should(Receive(&r))
		value, err := r.Unwrap()
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal([]byte("async-pong")))
	})

	It("delivers Notice records to the registered NotifyServant", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			enc := wire.NewEncoder(conn)
			_ = enc.Encode(wire.NewNotice(1, []byte("server says hi")))
			time.Sleep(time.Second)
		}()

		notify := &recordingNotify{ch: make(chan []byte, 1)}
		term := terminal.New(testClientConfig(ln.Addr().String()), notify, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(term.ConnectTo(ctx, ln.Addr().String())).To(Succeed())

		Eventually(notify.ch, time.Second).Should(Receive(Equal([]byte("server says hi"))))
	})

	It("reconnects on send when no connection is active and ReconnectOnSend is set", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		got := make(chan []byte, 1)
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			dec := wire.NewDecoder(conn, 0)
			rec, err := dec.Decode()
			if err != nil {
				return
			}
			got <- rec.Payload
		}()

		cfg := testClientConfig(ln.Addr().String())
		cfg.ReconnectOnSend = true
		term := terminal.New(cfg, nil, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		// no ConnectTo call: Report must dial on its own.
		Expect(term.Report(ctx, oid.New("r1", "reports"), []byte("note"))).To(Succeed())

		Eventually(got, time.Second).Should(Receive(Equal([]byte("note"))))
	})
})
