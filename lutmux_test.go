package ecp5pack

import "testing"

// TestExpandLUT5CollapsesMuxTree is §8 scenario 4: two LUT4s feeding a
// PFUMX collapse into one SLICE carrying both init masks, with the select
// line on M0 and the mux output on OFX0; all three original cells vanish.
func TestExpandLUT5CollapsesMuxTree(t *testing.T) {
	nl := NewNetlist()
	lutA := nl.CreateCell(TypeLUT4, "lutA")
	lutA.Params["INIT"] = IntProp(0xAAAA, 16)
	lutB := nl.CreateCell(TypeLUT4, "lutB")
	lutB.Params["INIT"] = IntProp(0xCCCC, 16)
	mux := nl.CreateCell(TypePFUMX, "mux0")

	for _, n := range []IdString{"a_out", "b_out", "sel", "z"} {
		nl.CreateNet(n)
	}
	nl.ConnectPort(lutA.Name, PortZ, "a_out")
	nl.ConnectPort(lutB.Name, PortZ, "b_out")
	nl.ConnectPort(mux.Name, "ALUT", "a_out")
	nl.ConnectPort(mux.Name, "BLUT", "b_out")
	nl.ConnectPort(mux.Name, "C0", "sel")
	nl.ConnectPort(mux.Name, PortZ, "z")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.expandLUT5s()
	nl.Flush()

	if _, ok := nl.GetCell("lutA"); ok {
		t.Fatalf("lutA should have been absorbed")
	}
	if _, ok := nl.GetCell("lutB"); ok {
		t.Fatalf("lutB should have been absorbed")
	}
	if _, ok := nl.GetCell("mux0"); ok {
		t.Fatalf("mux0 should have been absorbed")
	}

	var slice *Cell
	for _, c := range nl.Cells() {
		if isSlice(c) {
			slice = c
		}
	}
	if slice == nil {
		t.Fatalf("expected a SLICE cell to have been synthesized")
	}
	if slice.Params["LUT0_INITVAL"].Int != 0xAAAA {
		t.Fatalf("LUT0_INITVAL = %#x, want 0xAAAA", slice.Params["LUT0_INITVAL"].Int)
	}
	if slice.Params["LUT1_INITVAL"].Int != 0xCCCC {
		t.Fatalf("LUT1_INITVAL = %#x, want 0xCCCC", slice.Params["LUT1_INITVAL"].Int)
	}
	if slice.PortNet("M0") != "sel" {
		t.Fatalf("M0 = %q, want sel", slice.PortNet("M0"))
	}
	if slice.PortNet("OFX0") != "z" {
		t.Fatalf("OFX0 = %q, want z", slice.PortNet("OFX0"))
	}
}

// TestExpandLUT5PacksTrailingFF checks that an FF exclusively fed by the new
// SLICE's OFX0 output is opportunistically absorbed into the same cluster.
func TestExpandLUT5PacksTrailingFF(t *testing.T) {
	nl := NewNetlist()
	lutA := nl.CreateCell(TypeLUT4, "lutA")
	lutB := nl.CreateCell(TypeLUT4, "lutB")
	mux := nl.CreateCell(TypePFUMX, "mux0")
	ff := nl.CreateCell(TypeTrellisFF, "ff0")

	for _, n := range []IdString{"a_out", "b_out", "z"} {
		nl.CreateNet(n)
	}
	nl.ConnectPort(lutA.Name, PortZ, "a_out")
	nl.ConnectPort(lutB.Name, PortZ, "b_out")
	nl.ConnectPort(mux.Name, "ALUT", "a_out")
	nl.ConnectPort(mux.Name, "BLUT", "b_out")
	nl.ConnectPort(mux.Name, PortZ, "z")
	nl.ConnectPort(ff.Name, PortDI, "z")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.expandLUT5s()
	nl.Flush()

	if ff.Cluster == "" {
		t.Fatalf("expected ff0 to be absorbed into the slice's cluster")
	}
}

// buildLUT7Tree wires 8 LUT4s through 4 PFUMXs (LUT5s), 2 L6MUX21s (LUT6s),
// and a final L6MUX21 (LUT7) selecting between the two LUT6 outputs -- the
// full §4.2.4 LUT5->LUT6->LUT7 chain. Each L6MUX21's D0/D1 comes from its
// own distinct PFUMX-built SLICE, as real synthesis output would shape it.
func buildLUT7Tree(nl *Netlist) (lut7 *Cell) {
	// pfuNet(tag) builds one PFUMX fed by two fresh LUT4s and returns the
	// net its Z output drives.
	pfuNet := func(tag string) IdString {
		lutA := nl.CreateCell(TypeLUT4, IdString("lut"+tag+"a"))
		lutB := nl.CreateCell(TypeLUT4, IdString("lut"+tag+"b"))
		pfu := nl.CreateCell(TypePFUMX, IdString("pfu"+tag))
		aNet := IdString("lut" + tag + "a_z")
		bNet := IdString("lut" + tag + "b_z")
		zNet := IdString("pfu" + tag + "_z")
		nl.CreateNet(aNet)
		nl.CreateNet(bNet)
		nl.CreateNet(zNet)
		nl.ConnectPort(lutA.Name, PortZ, aNet)
		nl.ConnectPort(lutB.Name, PortZ, bNet)
		nl.ConnectPort(pfu.Name, "ALUT", aNet)
		nl.ConnectPort(pfu.Name, "BLUT", bNet)
		nl.ConnectPort(pfu.Name, PortZ, zNet)
		return zNet
	}

	l6a := nl.CreateCell(TypeL6MUX21, "l6a")
	l6b := nl.CreateCell(TypeL6MUX21, "l6b")
	l7 := nl.CreateCell(TypeL6MUX21, "l7")

	nl.ConnectPort(l6a.Name, "D0", pfuNet("0"))
	nl.ConnectPort(l6a.Name, "D1", pfuNet("1"))
	nl.CreateNet("l6a_z")
	nl.ConnectPort(l6a.Name, PortZ, "l6a_z")

	nl.ConnectPort(l6b.Name, "D0", pfuNet("2"))
	nl.ConnectPort(l6b.Name, "D1", pfuNet("3"))
	nl.CreateNet("l6b_z")
	nl.ConnectPort(l6b.Name, PortZ, "l6b_z")

	nl.ConnectPort(l7.Name, "D0", "l6a_z")
	nl.ConnectPort(l7.Name, "D1", "l6b_z")
	nl.CreateNet("l7_z")
	nl.ConnectPort(l7.Name, PortZ, "l7_z")
	return l7
}

// TestExpandLUT7StacksFourDistinctSlices is §8/§4.2.4's LUT7 case: 8 LUT4s
// folded through 4 LUT5 muxes, 2 LUT6 muxes, and a final LUT7 mux must end
// up as one 4-slice cluster with all four slices at distinct z in {0,1,2,3}
// and the LUT7 root at z=3.
func TestExpandLUT7StacksFourDistinctSlices(t *testing.T) {
	nl := NewNetlist()
	buildLUT7Tree(nl)
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.expandLUT5s()
	nl.Flush()
	p.expandLUT6s()
	nl.Flush()
	p.expandLUT7s()
	nl.Flush()

	var root *Cell
	zs := map[int]int{}
	n := 0
	for _, c := range nl.Cells() {
		if !isSlice(c) {
			continue
		}
		n++
		if c.ConstrAbsZ {
			zs[c.ConstrZ]++
		}
		if c.Cluster == c.Name {
			root = c
		}
	}
	if n != 4 {
		t.Fatalf("expected 4 SLICEs in the LUT7 cluster, got %d", n)
	}
	if root == nil {
		t.Fatalf("expected exactly one cluster root")
	}
	if root.ConstrZ != 3 {
		t.Fatalf("root ConstrZ = %d, want 3", root.ConstrZ)
	}
	for z := 0; z < 4; z++ {
		if zs[z] != 1 {
			t.Fatalf("expected exactly one slice at z=%d, got %d", z, zs[z])
		}
	}
}
