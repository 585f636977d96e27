package ecp5pack

import (
	"fmt"
	"testing"

	"github.com/aoeldemann/ecp5pack/devdb"
)

func buildCarryChain(nl *Netlist, n int) []*Cell {
	var cells []*Cell
	for i := 0; i < n; i++ {
		c := nl.CreateCell(TypeCCU2C, IdString(fmt.Sprintf("carry%d", i)))
		cells = append(cells, c)
	}
	for i := 0; i < n-1; i++ {
		net := IdString(fmt.Sprintf("cout%d", i))
		nl.CreateNet(net)
		nl.ConnectPort(cells[i].Name, PortCOUT, net)
		nl.ConnectPort(cells[i+1].Name, PortCIN, net)
	}
	return cells
}

// TestPackCarriesFeedIn is §8 scenario 2: a chain's first cell has its CIN
// fed by fabric logic (a LUT4 here), so packCarries must prepend a
// synthesized feed-in cell with the documented INIT0/INIT1/INJECT1 values,
// and the resulting cluster is four cells stacked at (0,0,i).
func TestPackCarriesFeedIn(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "cin_src")
	cells := buildCarryChain(nl, 3)
	nl.CreateNet("cin_net")
	nl.ConnectPort(lut.Name, PortZ, "cin_net")
	nl.ConnectPort(cells[0].Name, PortCIN, "cin_net")
	nl.Flush()

	db := devdb.NewFixture(30, 10)
	p := NewPacker(nl, db, DefaultConfig())
	p.stagePackCarries()
	nl.Flush()

	var feedIn *Cell
	for _, c := range nl.Cells() {
		if c.Type == TypeCCU2C && c.Name != "carry0" && c.Name != "carry1" && c.Name != "carry2" {
			feedIn = c
		}
	}
	if feedIn == nil {
		t.Fatalf("expected a synthesized feed-in cell")
	}
	if feedIn.Params["INIT0"].Int != 10 {
		t.Fatalf("feed-in INIT0 = %v, want 10", feedIn.Params["INIT0"].Int)
	}
	if uint64(feedIn.Params["INIT1"].Int) != 0xFFFF {
		t.Fatalf("feed-in INIT1 = %#x, want 0xFFFF", feedIn.Params["INIT1"].Int)
	}
	if feedIn.Params["INJECT1_1"].AsString() != "YES" {
		t.Fatalf("feed-in INJECT1_1 = %q, want YES", feedIn.Params["INJECT1_1"].AsString())
	}
	if feedIn.Cluster != feedIn.Name {
		t.Fatalf("feed-in cell should be the cluster root")
	}
	if len(feedIn.Children) != 3 {
		t.Fatalf("expected 3 children in the cluster, got %d", len(feedIn.Children))
	}
	for i, c := range cells {
		if c.Cluster != feedIn.Name {
			t.Fatalf("carry%d not in the feed-in's cluster", i)
		}
		if c.ConstrZ != i+1 {
			t.Fatalf("carry%d ConstrZ = %d, want %d", i, c.ConstrZ, i+1)
		}
	}
}

// TestPackCarriesOverrunSplitsWithFeedOut is §8 scenario 6: a chain one
// cell over the legal split length gets a feed-out cell inserted at the
// boundary, and the final cell count is original+1.
func TestPackCarriesOverrunSplitsWithFeedOut(t *testing.T) {
	nl := NewNetlist()
	db := devdb.NewFixture(6, 10) // lMax = (6-4)*4-2 = 6
	const n = 7                   // one over lMax
	buildCarryChain(nl, n)
	nl.Flush()

	p := NewPacker(nl, db, DefaultConfig())
	p.stagePackCarries()
	nl.Flush()

	count := 0
	for _, c := range nl.Cells() {
		if c.Type == TypeCCU2C {
			count++
		}
	}
	if count != n+1 {
		t.Fatalf("expected %d carry cells after feed-out insertion, got %d", n+1, count)
	}

	roots := map[IdString]bool{}
	for _, c := range nl.Cells() {
		if c.Type == TypeCCU2C && c.Cluster != "" {
			roots[c.Cluster] = true
		}
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 clusters after length-driven split, got %d", len(roots))
	}
}
