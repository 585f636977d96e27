package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// iologicModeTable maps an absorbed primitive's type to the IOLOGIC MODE
// parameter it produces, per the table in §4.4.
var iologicModeTable = map[IdString]string{
	TypeDELAYF:     "IREG_OREG",
	TypeDELAYG:     "IREG_OREG",
	TypeIDDRX1F:    "IDDRX1_ODDRX1",
	TypeODDRX1F:    "IDDRX1_ODDRX1",
	TypeODDRX2F:    "ODDRXN",
	TypeODDR71B:    "ODDRXN",
	TypeIDDRX2F:    "IDDRXN",
	TypeIDDR71B:    "IDDRXN",
	TypeOSHX2A:     "MIDDRX_MODDRX",
	TypeODDRX2DQA:  "MIDDRX_MODDRX",
	TypeODDRX2DQSB: "MIDDRX_MODDRX",
	TypeIDDRX2DQA:  "MIDDRX_MODDRX",
	TypeTSHX2DQA:   "MIDDRX_MODDRX",
	TypeTSHX2DQSA:  "MIDDRX_MODDRX",
}

// needsECLK reports whether an absorbed primitive type requires an
// edge-clock source rather than the ordinary per-PIO clock.
func needsECLK(t IdString) bool {
	switch t {
	case TypeODDRX2F, TypeODDR71B, TypeIDDRX2F, TypeIDDR71B,
		TypeOSHX2A, TypeODDRX2DQA, TypeODDRX2DQSB, TypeIDDRX2DQA,
		TypeTSHX2DQA, TypeTSHX2DQSA:
		return true
	}
	return false
}

// stagePackIOLogic absorbs every DDR/delay/shift primitive that must live
// in an IOLOGIC site adjacent to its PIO, per §4.4. Each primitive's PIO is
// found by following its data port back to (or forward to) a TRELLIS_IO
// cell; a primitive with no such PIO, or whose PIO already hosts a
// conflicting IOLOGIC assignment, is Fatal.
func (p *Packer) stagePackIOLogic() {
	Log(LOG_INFO, "Packing IOLOGIC...")
	iologics := map[IdString]*Cell{} // pio bel string -> IOLOGIC cell

	for _, c := range p.nl.Cells() {
		mode, ok := iologicModeTable[c.Type]
		if !ok {
			continue
		}
		pio := p.findAdjacentPIO(c)
		if pio == nil || pio.Bel.IsEmpty() {
			Log(LOG_ERR, "cell %s has no pin-constrained PIO to pack into an IOLOGIC", c.Name)
			continue
		}

		key := pio.Bel.String()
		iol, ok := iologics[key]
		if !ok {
			typ := TypeIOLOGIC
			if p.isTopBottomRow(pio.Bel) {
				typ = TypeSIOLOGIC
			}
			iol = p.nl.CreateCell(typ, p.nl.AutoName(string(pio.Name)+"$IOL"))
			iol.Bel = pio.Bel
			iologics[key] = iol
			Log(LOG_INFO, "IOLOGIC component connected to PIO bel %s", pio.Bel)
		}

		if cur, ok := iol.Params["MODE"]; ok && cur.AsString() != mode {
			Log(LOG_ERR, "IOLOGIC %s has conflicting modes '%s' and '%s'", iol.Name, cur.AsString(), mode)
			continue
		}
		iol.Params["MODE"] = StringProp(mode)
		if iol.Type == TypeSIOLOGIC && mode != "IREG_OREG" && mode != "IDDRX1_ODDRX1" && mode != "NONE" {
			Log(LOG_ERR, "IOLOGIC '%s' is set to mode '%s', but this is only supported for left/right I/O", iol.Name, mode)
		}

		p.assignIOLogicClock(iol, c)
		p.movePrimitivePorts(iol, c)

		p.nl.EraseCell(c.Name)
	}
}

// findAdjacentPIO locates the TRELLIS_IO cell a primitive's data port is
// ultimately wired to: for an output-facing primitive this is its driven
// net's sole user, for an input-facing primitive it is the driving cell.
func (p *Packer) findAdjacentPIO(c *Cell) *Cell {
	for _, port := range c.Ports {
		if port.Net == "" || port.Dir == PortOut {
			continue
		}
		n, ok := p.nl.GetNet(port.Net)
		if !ok {
			continue
		}
		if !n.Driver.IsZero() {
			if drv, ok := p.nl.GetCell(n.Driver.Cell); ok && isTrellisIO(drv) {
				return drv
			}
		}
	}
	for _, port := range c.Ports {
		if port.Net == "" || port.Dir != PortOut {
			continue
		}
		n, ok := p.nl.GetNet(port.Net)
		if !ok {
			continue
		}
		for _, u := range n.liveUsersSnapshot() {
			if cand, ok := p.nl.GetCell(u.Cell); ok && isTrellisIO(cand) {
				return cand
			}
		}
	}
	return nil
}

// isTopBottomRow reports whether a bel sits in the top or bottom I/O row,
// where only SIOLOGIC (not the full IOLOGIC) is available.
func (p *Packer) isTopBottomRow(bel devdb.BelId) bool {
	return bel.Loc.Y == 0 || bel.Loc.Y == p.db.Height()-1
}

// assignIOLogicClock wires a primitive's CLK/ECLK/LSR into the shared
// IOLOGIC cell, enforcing the conflict rule: a clock/reset already assigned
// must match exactly or the configuration is Fatal.
func (p *Packer) assignIOLogicClock(iol *Cell, prim *Cell) {
	assign := func(port IdString, eclk bool) {
		net := prim.PortNet(port)
		if net == "" {
			return
		}
		target := PortCLK
		if eclk {
			target = "ECLK"
		}
		if cur := iol.PortNet(target); cur != "" && cur != net {
			Log(LOG_ERR, "IOLOGIC '%s' has conflicting clocks '%s' and '%s'", iol.Name, cur, net)
			return
		}
		ensurePort(iol, target, PortIn)
		p.nl.ConnectPort(iol.Name, target, net)
	}
	assign(PortCLK, needsECLK(prim.Type))
	if lsr := prim.PortNet(PortLSR); lsr != "" {
		if cur := iol.PortNet(PortLSR); cur != "" && cur != lsr {
			Log(LOG_ERR, "IOLOGIC '%s' has conflicting LSR signals '%s' and '%s'", iol.Name, cur, lsr)
		} else {
			ensurePort(iol, PortLSR, PortIn)
			p.nl.ConnectPort(iol.Name, PortLSR, lsr)
		}
	}
}

// movePrimitivePorts relocates a primitive's data ports onto its IOLOGIC
// cell's PADDI/IOLDO/TXDATA*/RXDATA* ports, per the "key port moves" column
// of §4.4's table. Port names not covered by the simplified mapping below
// fall back to moving the connection onto an IOLOGIC port of the same name,
// which is correct for the primitives whose port names already match
// (TXDATA*/RXDATA* wide buses).
func (p *Packer) movePrimitivePorts(iol *Cell, prim *Cell) {
	rename := map[IdString]IdString{
		PortA:  "PADDI",
		PortZ:  "INDD",
		"D":    "PADDI",
		"Q0":   "RXDATA0",
		"Q1":   "RXDATA1",
		"D0":   "TXDATA0",
		"D1":   "TXDATA1",
		"Q":    "IOLDO",
	}
	for portName, port := range prim.Ports {
		if port.Net == "" {
			continue
		}
		dst := portName
		if r, ok := rename[portName]; ok {
			dst = r
		}
		ensurePort(iol, dst, port.Dir)
		p.nl.MovePortTo(prim.Name, portName, iol.Name, dst)
	}
}
