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

package server_test

import (
	"context"
	"net"
	"time"

	"github.com/sabouaram/icerpc/config"
	"github.com/sabouaram/icerpc/freeze"
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/server"
	"github.com/sabouaram/icerpc/servant"
	"github.com/sabouaram/icerpc/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type echoServant struct{ name string }

func (e echoServant) Name() string { return e.name }
func (e echoServant) Serve(ctx *wire.Context, req []byte) []byte {
	return append(append([]byte{}, req...), []byte("-echo")...)
}

func newListeningServer(maxConns int) (*server.Server, context.CancelFunc) {
	cfg := config.DefaultServer()
	cfg.Address = "127.0.0.1:0"
	cfg.EvictorCapacity = 16
	cfg.MaxConnections = maxConns

	s := server.New(cfg, freeze.NewMemoryStorage(), nil)
	s.ServantRegistry().AddServant("echo", echoServant{name: "e1"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Listen(ctx) }()

	Eventually(s.IsRunning, time.Second).Should(BeTrue())
	return s, cancel
}

var _ = Describe("Server", func() {
	It("accepts a connection and serves a request end to end", func() {
		s, cancel := newListeningServer(0)
		defer cancel()

		conn, err := net.Dial("tcp", s.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		enc := wire.NewEncoder(conn)
		dec := wire.NewDecoder(conn, 0)

		o := oid.New("e1", "echo")
		Expect(enc.Encode(wire.NewRequest(1, nil, &o, []byte("ping")))).To(Succeed())

		rec, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Kind).To(Equal(wire.KindResponse))

		result, err := servant.DecodeResult(rec.Payload)
		Expect(err).NotTo(HaveOccurred())
		value, err := result.Unwrap()
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal([]byte("ping-echo")))
	})

	It("tracks OpenConnections while a connection is live", func() {
		s, cancel := newListeningServer(0)
		defer cancel()

		conn, err := net.Dial("tcp", s.Addr().String())
		Expect(err).NotTo(HaveOccurred())

		Eventually(s.OpenConnections, time.Second).Should(Equal(int64(1)))

		Expect(conn.Close()).To(Succeed())
		Eventually(s.OpenConnections, time.Second).Should(Equal(int64(0)))
	})

	It("rejects a connection once MaxConnections is reached", func() {
		s, cancel := newListeningServer(1)
		defer cancel()

		first, err := net.Dial("tcp", s.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer first.Close()

		Eventually(s.AdapterRegister().Count, time.Second).Should(Equal(1))

		second, err := net.Dial("tcp", s.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer second.Close()

		buf := make([]byte, 1)
		second.SetReadDeadline(time.Now().Add(time.Second))
		_, err = second.Read(buf)
		Expect(err).To(HaveOccurred()) // server closed it immediately
	})

	It("broadcasts a Notice to every connected adapter", func() {
		s, cancel := newListeningServer(0)
		defer cancel()

		conn, err := net.Dial("tcp", s.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Eventually(func() int { return s.AdapterRegister().Count() }, time.Second).Should(Equal(1))

		s.AdapterRegister().Send([]byte("hello"))

		dec := wire.NewDecoder(conn, 0)
		rec, err := dec.Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Kind).To(Equal(wire.KindNotice))
		Expect(rec.Payload).To(Equal([]byte("hello")))
	})

	It("stops accepting after Shutdown", func() {
		s, cancel := newListeningServer(0)
		defer cancel()

		addr := s.Addr().String()
		Expect(s.Shutdown(context.Background())).To(Succeed())

		Eventually(s.IsRunning, time.Second).Should(BeFalse())

		_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		Expect(err).To(HaveOccurred())
	})
})
