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

package evictor_test

import (
	"github.com/sabouaram/icerpc/evictor"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("List", func() {
	It("Pop drains in LRU order with no touches", func() {
		l := evictor.New(0)
		n1, err := l.Push("a")
		Expect(err).NotTo(HaveOccurred())
		_, _ = l.Push("b")
		_, _ = l.Push("c")
		Expect(l.Len()).To(Equal(3))

		v, ok := l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("a"))
		Expect(l.Len()).To(Equal(2))

		Expect(l.Remove(n1)).To(HaveOccurred())
	})

	It("Top moves a node to most-recently-used, sparing it from the next Pop", func() {
		l := evictor.New(0)
		n1, _ := l.Push("a")
		_, _ = l.Push("b")
		_, _ = l.Push("c")

		Expect(l.Top(n1)).To(Succeed())

		v, ok := l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("b"))

		v, ok = l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("c"))

		v, ok = l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("a"))
	})

	It("Top on the already-MRU node is a no-op", func() {
		l := evictor.New(0)
		n1, _ := l.Push("a")
		Expect(l.Top(n1)).To(Succeed())

		v, ok := l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("a"))
	})

	It("Remove detaches a node from the middle", func() {
		l := evictor.New(0)
		_, _ = l.Push("a")
		n2, _ := l.Push("b")
		_, _ = l.Push("c")

		Expect(l.Remove(n2)).To(Succeed())
		Expect(l.Len()).To(Equal(2))

		v, _ := l.Pop()
		Expect(v).To(Equal("a"))
		v, _ = l.Pop()
		Expect(v).To(Equal("c"))
	})

	It("Pop on an empty list reports ok=false", func() {
		l := evictor.New(0)
		_, ok := l.Pop()
		Expect(ok).To(BeFalse())
	})

	It("refuses to push past capacity", func() {
		l := evictor.New(2)
		_, err := l.Push("a")
		Expect(err).NotTo(HaveOccurred())
		_, err = l.Push("b")
		Expect(err).NotTo(HaveOccurred())
		Expect(l.Full()).To(BeTrue())

		_, err = l.Push("c")
		Expect(err).To(HaveOccurred())
	})

	It("single-element list survives a Top round-trip", func() {
		l := evictor.New(0)
		n1, _ := l.Push("only")
		Expect(l.Top(n1)).To(Succeed())
		_, _ = l.Push("second")

		v, ok := l.Pop()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("only"))
	})

	It("unknown node ids are rejected", func() {
		l := evictor.New(0)
		Expect(l.Top(evictor.NodeID(999))).To(HaveOccurred())
		Expect(l.Remove(evictor.NodeID(999))).To(HaveOccurred())
	})

	Describe("Evict", func() {
		It("is a no-op below capacity", func() {
			l := evictor.New(2)
			_, _ = l.Push("a")

			_, ok := l.Evict()
			Expect(ok).To(BeFalse())
			Expect(l.Len()).To(Equal(1))
		})

		It("gives up the LRU entry once at capacity", func() {
			l := evictor.New(2)
			_, _ = l.Push("a")
			_, _ = l.Push("b")

			v, ok := l.Evict()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("a"))
			Expect(l.Len()).To(Equal(1))
		})

		It("reports ok=false on an unbounded list, regardless of length", func() {
			l := evictor.New(0)
			for i := 0; i < 10; i++ {
				_, _ = l.Push(i)
			}

			_, ok := l.Evict()
			Expect(ok).To(BeFalse())
		})
	})
})
