package ecp5pack

import "testing"

func TestConnectPortSetsDriverAndUser(t *testing.T) {
	nl := NewNetlist()
	nl.CreateNet("n0")
	lut := nl.CreateCell(TypeLUT4, "lut0")
	ff := nl.CreateCell(TypeTrellisFF, "ff0")

	nl.ConnectPort(lut.Name, PortZ, "n0")
	nl.ConnectPort(ff.Name, PortDI, "n0")

	n, ok := nl.GetNet("n0")
	if !ok {
		t.Fatalf("net n0 not found")
	}
	if n.Driver.Cell != "lut0" || n.Driver.Port != PortZ {
		t.Fatalf("unexpected driver: %+v", n.Driver)
	}
	users := n.liveUsersSnapshot()
	if len(users) != 1 || users[0].Cell != "ff0" || users[0].Port != PortDI {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestDisconnectPortLeavesStableUserIndices(t *testing.T) {
	nl := NewNetlist()
	nl.CreateNet("n0")
	a := nl.CreateCell(TypeLUT4, "a")
	b := nl.CreateCell(TypeLUT4, "b")
	nl.ConnectPort(a.Name, PortA, "n0")
	nl.ConnectPort(b.Name, PortA, "n0")

	nl.DisconnectPort(a.Name, PortA)

	n, _ := nl.GetNet("n0")
	if len(n.Users) != 2 {
		t.Fatalf("expected user slot to be retained as a zero entry, got %d entries", len(n.Users))
	}
	if !n.Users[0].IsZero() {
		t.Fatalf("expected first user slot to be zeroed after disconnect")
	}
	if n.Users[1].Cell != "b" {
		t.Fatalf("second user's index shifted after disconnect: %+v", n.Users[1])
	}
}

func TestFlushAppliesStagedMutations(t *testing.T) {
	nl := NewNetlist()
	c := nl.CreateCell(TypeLUT4, "keep")
	nl.Flush()
	if _, ok := nl.GetCell("keep"); !ok {
		t.Fatalf("cell should be visible after flush")
	}

	nl.EraseCell(c.Name)
	if _, ok := nl.GetCell("keep"); ok {
		t.Fatalf("GetCell must hide a cell staged for deletion immediately")
	}
	if _, ok := nl.Cells()["keep"]; !ok {
		t.Fatalf("raw Cells() map must still hold the cell until Flush")
	}
	nl.Flush()
	if _, ok := nl.Cells()["keep"]; ok {
		t.Fatalf("cell should be gone from Cells() after flush")
	}
}

func TestMovePortToRelocatesConnection(t *testing.T) {
	nl := NewNetlist()
	nl.CreateNet("n0")
	src := nl.CreateCell(TypeLUT4, "src")
	dst := nl.CreateCell(TypeIOLOGIC, "dst")
	nl.ConnectPort(src.Name, PortA, "n0")

	nl.MovePortTo(src.Name, PortA, dst.Name, "PADDI")

	if src.PortNet(PortA) != "" {
		t.Fatalf("source port should be disconnected after move")
	}
	if dst.PortNet("PADDI") != "n0" {
		t.Fatalf("destination port should carry the moved connection")
	}
}
