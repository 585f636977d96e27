// Description:
//
// Implements several functions for synthetic pre-pack netlist generation,
// used by tests and the CLI's --demo mode to exercise the packer without a
// real synthesis front end.

package utils

import (
	"fmt"

	"github.com/aoeldemann/ecp5pack"
)

// GenLUTFFChain builds a chain of n LUT4 cells each feeding a TRELLIS_FF,
// each stage's FF output driving the next stage's LUT input A, with a
// primary input net feeding the first LUT and the last FF's Q left as a
// dangling output (a stand-in for a top-level port in tests that don't
// exercise I/O packing).
func GenLUTFFChain(nl *ecp5pack.Netlist, n int) {
	prev := ecp5pack.IdString("in")
	nl.CreateNet(prev)
	for i := 0; i < n; i++ {
		lut := nl.CreateCell(ecp5pack.TypeLUT4, ecp5pack.IdString(fmt.Sprintf("lut%d", i)))
		lut.Params["INIT"] = ecp5pack.IntProp(0xAAAA, 16)
		nl.ConnectPort(lut.Name, ecp5pack.PortA, prev)

		lutOut := ecp5pack.IdString(fmt.Sprintf("lut%d_z", i))
		nl.CreateNet(lutOut)
		nl.ConnectPort(lut.Name, ecp5pack.PortZ, lutOut)

		ff := nl.CreateCell(ecp5pack.TypeTrellisFF, ecp5pack.IdString(fmt.Sprintf("ff%d", i)))
		nl.ConnectPort(ff.Name, ecp5pack.PortDI, lutOut)

		ffOut := ecp5pack.IdString(fmt.Sprintf("ff%d_q", i))
		nl.CreateNet(ffOut)
		nl.ConnectPort(ff.Name, ecp5pack.PortQ, ffOut)

		prev = ffOut
	}
	nl.Flush()
}

// GenCarryChain builds n CCU2C cells chained COUT->CIN, with the first
// cell's CIN fed by a LUT4 (so packCarries must synthesize a feed-in cell)
// and the last cell's COUT left dangling.
func GenCarryChain(nl *ecp5pack.Netlist, n int) {
	feedLUT := nl.CreateCell(ecp5pack.TypeLUT4, "carry_cin_src")
	feedLUT.Params["INIT"] = ecp5pack.IntProp(0, 16)
	cinNet := ecp5pack.IdString("carry_cin")
	nl.CreateNet(cinNet)
	nl.ConnectPort(feedLUT.Name, ecp5pack.PortZ, cinNet)

	prev := cinNet
	for i := 0; i < n; i++ {
		c := nl.CreateCell(ecp5pack.TypeCCU2C, ecp5pack.IdString(fmt.Sprintf("carry%d", i)))
		nl.ConnectPort(c.Name, ecp5pack.PortCIN, prev)

		cout := ecp5pack.IdString(fmt.Sprintf("carry%d_cout", i))
		nl.CreateNet(cout)
		nl.ConnectPort(c.Name, ecp5pack.PortCOUT, cout)
		prev = cout
	}
	nl.Flush()
}

// GenPFUMXTree builds two LUT4 cells feeding a PFUMX, used to exercise
// LUT5 mux collapse (§4.2.4).
func GenPFUMXTree(nl *ecp5pack.Netlist, name string) {
	alut := nl.CreateCell(ecp5pack.TypeLUT4, ecp5pack.IdString(name+"_alut"))
	blut := nl.CreateCell(ecp5pack.TypeLUT4, ecp5pack.IdString(name+"_blut"))
	alut.Params["INIT"] = ecp5pack.IntProp(0x5555, 16)
	blut.Params["INIT"] = ecp5pack.IntProp(0xAAAA, 16)

	aNet := ecp5pack.IdString(name + "_a")
	bNet := ecp5pack.IdString(name + "_b")
	selNet := ecp5pack.IdString(name + "_sel")
	outNet := ecp5pack.IdString(name + "_out")
	nl.CreateNet(aNet)
	nl.CreateNet(bNet)
	nl.CreateNet(selNet)
	nl.CreateNet(outNet)
	nl.ConnectPort(alut.Name, ecp5pack.PortZ, aNet)
	nl.ConnectPort(blut.Name, ecp5pack.PortZ, bNet)

	mux := nl.CreateCell(ecp5pack.TypePFUMX, ecp5pack.IdString(name+"_mux"))
	nl.ConnectPort(mux.Name, "ALUT", aNet)
	nl.ConnectPort(mux.Name, "BLUT", bNet)
	nl.ConnectPort(mux.Name, "C0", selNet)
	nl.ConnectPort(mux.Name, ecp5pack.PortZ, outNet)

	nl.Flush()
}
