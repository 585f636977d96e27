package devdb

// Fixture is a small synthetic ECP5-shaped device: a rectangular grid of
// SLICE tiles with a ring of PIO sites around the edge, one BRAM/DSP/PLL
// column, one DQS strobe per bank, and a minimal edge-clock fabric (two ECLK slots
// per bank, reachable from any PIO's ECLK wire by a handful of pips). It
// exists so tests and the CLI's --demo mode have a Database to pack
// against without needing a real chip-data file.
type Fixture struct {
	width, height int

	kinds map[BelId]BelKind
	ofKind map[BelKind][]BelId
	wires map[BelId][]WireId
	neighbors map[WireId][]WireId
	byLoc map[Loc]map[int]BelId
	dqs map[BelId]BelId
	pins map[string]BelId
}

// NewFixture builds a width x height device. width and height must each be
// at least 6 so there is room for a SLICE interior, a PIO ring, and a
// dedicated BRAM/DSP/PLL column.
func NewFixture(width, height int) *Fixture {
	f := &Fixture{
		width: width, height: height,
		kinds:     map[BelId]BelKind{},
		ofKind:    map[BelKind][]BelId{},
		wires:     map[BelId][]WireId{},
		neighbors: map[WireId][]WireId{},
		byLoc:     map[Loc]map[int]BelId{},
		dqs:       map[BelId]BelId{},
		pins:      map[string]BelId{},
	}
	f.buildSlices()
	f.buildPIOs()
	f.buildHardColumn()
	f.buildEdgeClocks()
	return f
}

func (f *Fixture) add(bel BelId, kind BelKind, site int, wireNames ...string) {
	f.kinds[bel] = kind
	f.ofKind[kind] = append(f.ofKind[kind], bel)
	if f.byLoc[bel.Loc] == nil {
		f.byLoc[bel.Loc] = map[int]BelId{}
	}
	f.byLoc[bel.Loc][site] = bel
	for _, wn := range wireNames {
		f.wires[bel] = append(f.wires[bel], WireId{Loc: bel.Loc, Name: wn})
	}
}

func (f *Fixture) buildSlices() {
	for x := 2; x < f.width-3; x++ {
		for y := 1; y < f.height-1; y++ {
			for z := 0; z < 4; z++ {
				bel := BelId{Loc: Loc{X: x, Y: y}, Name: "SLICE" + itoa(z)}
				f.add(bel, BelSlice, z, "CLK", "LSR", "CE", "F0", "F1")
			}
		}
	}
}

func (f *Fixture) buildPIOs() {
	pin := 1
	addPin := func(bel BelId) {
		f.pins["P"+itoa(pin)] = bel
		pin++
	}
	for x := 1; x < f.width-1; x++ {
		for _, y := range []int{0, f.height - 1} {
			for site := 0; site < 2; site++ {
				bel := BelId{Loc: Loc{X: x, Y: y}, Name: "PIO" + itoa(site)}
				f.add(bel, BelIO, site, "PADDI", "PADDO", "CLK", "ECLK", "LSR")
				addPin(bel)
			}
		}
	}
	for y := 1; y < f.height-1; y++ {
		for _, x := range []int{0, f.width - 1} {
			for site := 0; site < 2; site++ {
				bel := BelId{Loc: Loc{X: x, Y: y}, Name: "PIO" + itoa(site)}
				f.add(bel, BelIO, site, "PADDI", "PADDO", "CLK", "ECLK", "LSR")
				addPin(bel)
			}
		}
	}
}

func (f *Fixture) buildHardColumn() {
	col := f.width - 3
	for y := 2; y < f.height-1; y += 3 {
		bram := BelId{Loc: Loc{X: col, Y: y}, Name: "DP16KD"}
		f.add(bram, BelBRAM, 0, "CLKA", "CLKB")
		dsp := BelId{Loc: Loc{X: col, Y: y + 1}, Name: "MULT18X18D"}
		f.add(dsp, BelDSP, 0, "CLK0")
	}
	pll := BelId{Loc: Loc{X: col, Y: 1}, Name: "EHXPLLL"}
	f.add(pll, BelPLL, 0, "CLKI", "CLKFB", "CLKOP")

	dcu := BelId{Loc: Loc{X: f.width - 1, Y: f.height / 2}, Name: "DCU0"}
	f.add(dcu, BelDCU, 0)
	f.pins["DCU0"] = dcu
	extref := BelId{Loc: Loc{X: f.width - 1, Y: f.height/2 + 1}, Name: "EXTREF0"}
	f.add(extref, BelDCU, 1)
	f.pins["EXTREF0"] = extref
	pcs := BelId{Loc: Loc{X: f.width - 1, Y: f.height/2 + 2}, Name: "PCSCLKDIV0"}
	f.add(pcs, BelDCU, 2)

	usrmclk := BelId{Loc: Loc{X: 1, Y: 0}, Name: "USRMCLK"}
	f.add(usrmclk, BelGlobal, 0)
	f.pins["USRMCLK"] = usrmclk
	gsr := BelId{Loc: Loc{X: 1, Y: 1}, Name: "GSR"}
	f.add(gsr, BelGlobal, 0)
	f.pins["GSR"] = gsr

	for bank := 0; bank < 4; bank++ {
		y := bank * (f.height / 4)
		if y >= f.height {
			y = f.height - 1
		}
		dqs := BelId{Loc: Loc{X: col - 1, Y: y}, Name: "DQSBUFM"}
		f.add(dqs, BelDQS, 0, "ECLK", "DQSR90", "DQSW270")
		for _, io := range f.ofKind[BelIO] {
			if f.bankOf(io) == bank {
				f.dqs[io] = dqs
			}
		}
	}
}

func (f *Fixture) bankOf(bel BelId) int {
	if f.height == 0 {
		return 0
	}
	return bel.Loc.Y * 4 / f.height
}

// buildEdgeClocks wires two global ECLK slots per bank: each bank's PIO
// ECLK wires connect (by a single pip hop) to BNK_ECLK0/1, and those bridge
// (by one more hop) to a dedicated G_BANK<n>ECLK<slot> wire hosted by a
// BelEClk bel, matching the wire names eclk.go's BFS searches for.
func (f *Fixture) buildEdgeClocks() {
	for bank := 0; bank < 4; bank++ {
		y := bank * (f.height / 4)
		if y >= f.height {
			y = f.height - 1
		}
		for slot := 0; slot < 2; slot++ {
			bel := BelId{Loc: Loc{X: 0, Y: y}, Name: "ECLK" + itoa(slot)}
			gwire := WireId{Loc: bel.Loc, Name: "G_BANK" + itoa(bank) + "ECLK" + itoa(slot)}
			f.add(bel, BelEClk, slot, gwire.Name)

			bnk := WireId{Loc: Loc{X: 0, Y: y}, Name: "BNK_ECLK" + itoa(slot)}
			f.link(bnk, gwire)
		}
	}
	for _, io := range f.ofKind[BelIO] {
		bank := f.bankOf(io)
		y := bank * (f.height / 4)
		if y >= f.height {
			y = f.height - 1
		}
		eclkWire := WireId{Loc: io.Loc, Name: "ECLK"}
		for slot := 0; slot < 2; slot++ {
			bnk := WireId{Loc: Loc{X: 0, Y: y}, Name: "BNK_ECLK" + itoa(slot)}
			f.link(eclkWire, bnk)
		}
	}
}

func (f *Fixture) link(a, b WireId) {
	f.neighbors[a] = append(f.neighbors[a], b)
	f.neighbors[b] = append(f.neighbors[b], a)
}

func (f *Fixture) BelsOfKind(kind BelKind) []BelId { return f.ofKind[kind] }

func (f *Fixture) BelKind(bel BelId) BelKind { return f.kinds[bel] }

func (f *Fixture) Neighbors(src WireId) []WireId { return f.neighbors[src] }

func (f *Fixture) WiresOfBel(bel BelId) []WireId { return f.wires[bel] }

func (f *Fixture) BelAt(loc Loc, site int) (BelId, bool) {
	m, ok := f.byLoc[loc]
	if !ok {
		return BelId{}, false
	}
	b, ok := m[site]
	return b, ok
}

func (f *Fixture) DQSGroup(iologic BelId) (BelId, bool) {
	b, ok := f.dqs[iologic]
	return b, ok
}

func (f *Fixture) Width() int { return f.width }

func (f *Fixture) Height() int { return f.height }

func (f *Fixture) PackagePinBel(pin string) (BelId, bool) {
	b, ok := f.pins[pin]
	return b, ok
}
