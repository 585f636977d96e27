package ecp5pack

import "testing"

// TestAttachFFToSliceUsesFirstThenSecondSlot is a regression test: attaching
// two FFs to the same fresh SLICE must land one on Q0/M0 and the other on
// Q1/M1, not both on M1 (the bug the GetPort-as-presence-check pattern
// would otherwise cause, since SLICE always declares Q0/Q1 in its template
// regardless of whether they carry a connection).
func TestAttachFFToSliceUsesFirstThenSecondSlot(t *testing.T) {
	nl := NewNetlist()
	slice := nl.CreateCell(TypeSlice, "slice0")
	ff0 := nl.CreateCell(TypeTrellisFF, "ff0")
	ff1 := nl.CreateCell(TypeTrellisFF, "ff1")
	nl.CreateNet("d0")
	nl.CreateNet("d1")
	nl.ConnectPort(ff0.Name, PortDI, "d0")
	nl.ConnectPort(ff1.Name, PortDI, "d1")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.attachFFToSlice(slice, ff0)
	p.attachFFToSlice(slice, ff1)

	if slice.PortNet("M0") != "d0" {
		t.Fatalf("expected first FF on M0, got M0=%q", slice.PortNet("M0"))
	}
	if slice.PortNet("M1") != "d1" {
		t.Fatalf("expected second FF on M1, got M1=%q", slice.PortNet("M1"))
	}
}

// TestFindFFHostLocatesSliceWithFreeSlot exercises the dense-packing
// fallback's BFS: a SLICE whose first FF slot (M0) is already occupied,
// reachable through a shared net, must be returned as a host for a new FF.
func TestFindFFHostLocatesSliceWithFreeSlot(t *testing.T) {
	nl := NewNetlist()
	slice := nl.CreateCell(TypeSlice, "slice0")
	hostedFF := nl.CreateCell(TypeTrellisFF, "hosted_ff")
	newFF := nl.CreateCell(TypeTrellisFF, "new_ff")

	nl.CreateNet("hosted_d")
	nl.CreateNet("shared")
	nl.ConnectPort(hostedFF.Name, PortDI, "hosted_d")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.attachFFToSlice(slice, hostedFF)

	nl.ConnectPort(slice.Name, PortCLK, "shared")
	nl.ConnectPort(newFF.Name, PortCLK, "shared")
	nl.Flush()

	host := p.findFFHost(newFF)
	if host == nil {
		t.Fatalf("expected findFFHost to locate slice0")
	}
	if host.Name != "slice0" {
		t.Fatalf("expected host slice0, got %s", host.Name)
	}
}

// TestFindFFHostLocatesSliceWithFreeQ0Slot is the mirror of
// TestFindFFHostLocatesSliceWithFreeSlot: a SLICE whose *second* FF slot
// (Q1) is occupied but whose first (Q0) is free -- as happens when a LUT
// pair's F1 half has a paired FF but F0's does not -- must still be found,
// not skipped because the BFS only ever checked Q1.
func TestFindFFHostLocatesSliceWithFreeQ0Slot(t *testing.T) {
	nl := NewNetlist()
	slice := nl.CreateCell(TypeSlice, "slice0")
	newFF := nl.CreateCell(TypeTrellisFF, "new_ff")

	nl.CreateNet("q1_out")
	nl.CreateNet("shared")
	// Occupy slot 1 only (as a LUT pair's F1 half would, when F0's LUT had
	// no paired FF), leaving Q0/slot 0 free.
	nl.ConnectPort(slice.Name, "Q1", "q1_out")
	nl.ConnectPort(slice.Name, PortCLK, "shared")
	nl.ConnectPort(newFF.Name, PortCLK, "shared")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	host := p.findFFHost(newFF)
	if host == nil {
		t.Fatalf("expected findFFHost to locate slice0 via its free Q0 slot")
	}
	if host.Name != "slice0" {
		t.Fatalf("expected host slice0, got %s", host.Name)
	}
}
