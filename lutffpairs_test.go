package ecp5pack

import "testing"

// TestFindLUTFFPairsBasicAbsorption is §8 scenario 1's discovery half:
// LUT4.Z solely driving FF.DI (with no M connection) must be recorded as a
// pairing in both directions.
func TestFindLUTFFPairsBasicAbsorption(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "lut0")
	lut.Params["INIT"] = IntProp(0xAAAA, 16)
	ff := nl.CreateCell(TypeTrellisFF, "ff0")
	nl.CreateNet("z")
	nl.ConnectPort(lut.Name, PortZ, "z")
	nl.ConnectPort(ff.Name, PortDI, "z")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stageFindLUTFFPairs()

	if got := p.lutffPairs["lut0"]; got != "ff0" {
		t.Fatalf("expected lut0 paired with ff0, got %q", got)
	}
	if got := p.fflutPairs["ff0"]; got != "lut0" {
		t.Fatalf("expected ff0 paired with lut0, got %q", got)
	}
}

// TestFindLUTFFPairsSkipsPreloadFF checks that an FF with an M connection
// (preload, conflicting with a packed LUT on the shared M wire) is never
// paired.
func TestFindLUTFFPairsSkipsPreloadFF(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "lut0")
	ff := nl.CreateCell(TypeTrellisFF, "ff0")
	nl.CreateNet("z")
	nl.CreateNet("preload")
	nl.ConnectPort(lut.Name, PortZ, "z")
	nl.ConnectPort(ff.Name, PortDI, "z")
	nl.ConnectPort(ff.Name, PortM, "preload")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stageFindLUTFFPairs()

	if _, ok := p.lutffPairs["lut0"]; ok {
		t.Fatalf("lut0 should not be paired when its FF has a preload connection")
	}
}

// TestFindLUTFFPairsSkipsSharedFanout ensures a LUT whose Z net fans out to
// more than one FF is not paired (netOnlyDrives requires a single user of
// the matched shape).
func TestFindLUTFFPairsSkipsSharedFanout(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "lut0")
	ff1 := nl.CreateCell(TypeTrellisFF, "ff1")
	ff2 := nl.CreateCell(TypeTrellisFF, "ff2")
	nl.CreateNet("z")
	nl.ConnectPort(lut.Name, PortZ, "z")
	nl.ConnectPort(ff1.Name, PortDI, "z")
	nl.ConnectPort(ff2.Name, PortDI, "z")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stageFindLUTFFPairs()

	if _, ok := p.lutffPairs["lut0"]; ok {
		t.Fatalf("lut0 should not be paired when its output fans out to two FFs")
	}
}
