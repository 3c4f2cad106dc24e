package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a32sim/insts"
)

var _ = Describe("Disassembly", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	DescribeTable("should render UAL text",
		func(word uint32, text string) {
			Expect(decoder.Decode(word).String()).To(Equal(text))
		},
		Entry("immediate", uint32(0xE2810005), "ADD r0, r1, #0x5"),
		Entry("rotated immediate with S", uint32(0xE3B004FF), "MOVS r0, #0xff000000"),
		Entry("conditional shift", uint32(0x10432104), "SUBNE r2, r3, r4, lsl #2"),
		Entry("register shift", uint32(0xE1A00211), "MOV r0, r1, lsl r2"),
		Entry("comparison", uint32(0xE1510002), "CMP r1, r2"),
		Entry("rrx", uint32(0xE1A00061), "MOV r0, r1, rrx"),
		Entry("lsr #32", uint32(0xE1A00021), "MOV r0, r1, lsr #32"),
		Entry("named registers", uint32(0xE1A0F00E), "MOV pc, lr"),
		Entry("unsupported", uint32(0xEA000000), ".word 0xea000000"),
	)
})
