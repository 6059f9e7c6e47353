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

package servant_test

import (
	"github.com/sabouaram/icerpc/servant"
	"github.com/sabouaram/icerpc/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type counterServant struct {
	value int
}

func (c *counterServant) Name() string { return "counter-1" }
func (c *counterServant) Serve(ctx *wire.Context, req []byte) []byte {
	c.value++
	return []byte{byte(c.value)}
}
func (c *counterServant) Dump() ([]byte, error) {
	return []byte{byte(c.value)}, nil
}

type ephemeralServant struct{}

func (ephemeralServant) Name() string                              { return "e" }
func (ephemeralServant) Serve(ctx *wire.Context, req []byte) []byte { return nil }

var _ = Describe("Dump", func() {
	It("delegates to a Servant implementing Dumper", func() {
		data, err := servant.Dump(&counterServant{value: 7})
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{7}))
	})

	It("reports ErrNotSerializable for a Servant without Dump", func() {
		_, err := servant.Dump(ephemeralServant{})
		Expect(err).To(Equal(servant.ErrNotSerializable))
	})
})

var _ = Describe("Result encoding", func() {
	It("round-trips an Ok result", func() {
		data, err := servant.EncodeResult(servant.Ok([]byte("42")))
		Expect(err).NotTo(HaveOccurred())

		got, err := servant.DecodeResult(data)
		Expect(err).NotTo(HaveOccurred())
		value, uerr := got.Unwrap()
		Expect(uerr).NotTo(HaveOccurred())
		Expect(value).To(Equal([]byte("42")))
	})

	It("round-trips a Fail result", func() {
		data, err := servant.EncodeResult(servant.Fail(servant.NewRemoteError("boom: %d", 7)))
		Expect(err).NotTo(HaveOccurred())

		got, err := servant.DecodeResult(data)
		Expect(err).NotTo(HaveOccurred())
		_, uerr := got.Unwrap()
		Expect(uerr).To(MatchError("boom: 7"))
	})
})
