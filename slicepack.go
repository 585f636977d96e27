package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// stagePackRemainingSliceLogic implements §4.2.6: pack LUT-LUT pairs into
// shared SLICEs, then singleton-pack any LUT left unpaired, then place
// every orphan FF either into an existing SLICE with free capacity (found
// via a bounded netlist-local BFS, once the design is densely packed) or
// into its own new SLICE.
func (p *Packer) stagePackRemainingSliceLogic() {
	Log(LOG_INFO, "Packing remaining SLICE logic...")
	handled := map[IdString]bool{}

	p.packLUTPairs(handled)
	p.packRemainingLUTs(handled)
	p.packRemainingFFs(handled)
}

// packLUTPairs creates one SLICE per LUT-LUT pair discovered in stagePairLUTs,
// with both LUTs occupying positions 0 and 1, then opportunistically packs
// each LUT's paired FF.
func (p *Packer) packLUTPairs(handled map[IdString]bool) {
	done := map[IdString]bool{}
	for a, b := range p.lutPairs {
		if done[a] || done[b] {
			continue
		}
		lutA, ok1 := p.nl.GetCell(a)
		lutB, ok2 := p.nl.GetCell(b)
		if !ok1 || !ok2 {
			continue
		}
		slice := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(a)+"$pair"))
		slice.Params["MODE"] = StringProp("LOGIC")
		p.moveLUTInto(slice, lutA, 0)
		p.moveLUTInto(slice, lutB, 1)
		p.packPairedFF(slice, lutA, "F0")
		p.packPairedFF(slice, lutB, "F1")

		p.nl.EraseCell(a)
		p.nl.EraseCell(b)
		done[a], done[b] = true, true
		handled[a], handled[b] = true, true
	}
}

// packRemainingLUTs gives every still-unhandled LUT its own SLICE,
// conventionally in position 1, packing its paired FF if any.
func (p *Packer) packRemainingLUTs(handled map[IdString]bool) {
	for _, lut := range p.nl.Cells() {
		if !isLUT(lut) || handled[lut.Name] {
			continue
		}
		slice := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(lut.Name)+"$slice"))
		slice.Params["MODE"] = StringProp("LOGIC")
		p.moveLUTInto(slice, lut, 1)
		p.packPairedFF(slice, lut, "F1")
		p.nl.EraseCell(lut.Name)
		handled[lut.Name] = true
	}
}

// packPairedFF packs the FF paired (by stageFindLUTFFPairs) with a LUT just
// moved into a slice, connecting its DI from the slice's F output and
// marking it handled so packRemainingFFs skips it.
func (p *Packer) packPairedFF(slice *Cell, lut *Cell, fport IdString) {
	ffName, ok := p.lutffPairs[lut.Name]
	if !ok {
		return
	}
	ff, ok := p.nl.GetCell(ffName)
	if !ok {
		return
	}
	qport := IdString("Q0")
	if fport == "F1" {
		qport = "Q1"
	}
	p.nl.DisconnectPort(ff.Name, PortDI)
	p.nl.MovePortTo(ff.Name, PortCLK, slice.Name, PortCLK)
	p.nl.MovePortTo(ff.Name, PortCE, slice.Name, PortCE)
	p.nl.MovePortTo(ff.Name, PortLSR, slice.Name, PortLSR)
	if qnet := ff.PortNet(PortQ); qnet != "" {
		p.nl.MovePortTo(ff.Name, PortQ, slice.Name, qport)
	}
	p.nl.EraseCell(ff.Name)
}

// packRemainingFFs places every FF not already consumed by a LUT pairing,
// either absorbed into an existing SLICE's free FF slot or given a fresh
// singleton SLICE, per the dense-packing fallback of §4.2.6.
func (p *Packer) packRemainingFFs(handled map[IdString]bool) {
	availSlices := len(p.db.BelsOfKind(devdb.BelSlice))
	for _, ff := range p.nl.Cells() {
		if !isFF(ff) || handled[ff.Name] {
			continue
		}
		usedSlices := p.countSlices()
		dense := availSlices > 0 && float64(usedSlices) > p.cfg.DensePackThreshold*float64(availSlices)
		if dense && ff.PortNet(PortM) == "" {
			if host := p.findFFHost(ff); host != nil {
				p.attachFFToSlice(host, ff)
				handled[ff.Name] = true
				continue
			}
		}
		slice := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(ff.Name)+"$slice"))
		slice.Params["MODE"] = StringProp("LOGIC")
		p.attachFFToSlice(slice, ff)
		handled[ff.Name] = true
	}
}

// attachFFToSlice wires an FF's CLK/CE/LSR/DI/Q into the first free logic
// slot (0 then 1) of a slice and counts it against sliceUsage.
func (p *Packer) attachFFToSlice(slice *Cell, ff *Cell) {
	slot := 0
	if slice.PortNet("Q0") != "" || slice.PortNet("M0") != "" {
		slot = 1
	}
	qport := IdString("Q" + itoa(slot))
	mport := IdString("M" + itoa(slot))
	p.nl.MovePortTo(ff.Name, PortCLK, slice.Name, PortCLK)
	p.nl.MovePortTo(ff.Name, PortCE, slice.Name, PortCE)
	p.nl.MovePortTo(ff.Name, PortLSR, slice.Name, PortLSR)
	p.nl.MovePortTo(ff.Name, PortDI, slice.Name, mport)
	if qnet := ff.PortNet(PortQ); qnet != "" {
		p.nl.ConnectPort(slice.Name, qport, qnet)
	}
	p.sliceUsage[slice.Name]++
	p.nl.EraseCell(ff.Name)
}

// countSlices counts how many SLICE cells exist in the netlist (new or
// already present), used to decide whether the dense-packing fallback
// should trigger.
func (p *Packer) countSlices() int {
	n := 0
	for _, c := range p.nl.Cells() {
		if isSlice(c) {
			n++
		}
	}
	return n
}

// findFFHost performs the netlist-local BFS of §4.2.6: starting from the
// FF, walk cells reachable via nets of fanout <= LUTPairFanoutHi, bounded to
// RoutingBFSCap (10,000 by default) visited cells, looking for an existing
// SLICE with a free FF slot, tile-level compatibility, and cluster size <= 8.
func (p *Packer) findFFHost(ff *Cell) *Cell {
	visited := map[IdString]bool{ff.Name: true}
	queue := []IdString{ff.Name}
	visitCap := p.cfg.RoutingBFSCap
	for len(queue) > 0 && len(visited) < visitCap {
		cur := queue[0]
		queue = queue[1:]
		c, ok := p.nl.GetCell(cur)
		if !ok {
			continue
		}
		for _, port := range c.Ports {
			if port.Net == "" {
				continue
			}
			n, ok := p.nl.GetNet(port.Net)
			if !ok || n.UserCount() > p.cfg.LUTPairFanoutHi {
				continue
			}
			neighbors := n.liveUsersSnapshot()
			if !n.Driver.IsZero() {
				neighbors = append(neighbors, n.Driver)
			}
			for _, ref := range neighbors {
				if visited[ref.Cell] {
					continue
				}
				visited[ref.Cell] = true
				nb, ok := p.nl.GetCell(ref.Cell)
				if !ok {
					continue
				}
				hasFreeSlot := (nb.PortNet("Q0") == "" && nb.PortNet("M0") == "") ||
					(nb.PortNet("Q1") == "" && nb.PortNet("M1") == "")
				if isSlice(nb) && hasFreeSlot && p.sliceTileCompatible(nb, ff) && p.clusterSize(nb) <= 8 {
					return nb
				}
				queue = append(queue, ref.Cell)
			}
		}
	}
	return nil
}

// sliceTileCompatible checks the tile-level FF compatibility rule: CLK,
// LSR, CLKMUX, LSRMUX and SRMODE must agree (CE may differ across slices
// within a tile, per §3's relationship note).
func (p *Packer) sliceTileCompatible(slice *Cell, ff *Cell) bool {
	if netOrEmpty(slice, PortCLK) != "" && netOrEmpty(slice, PortCLK) != netOrEmpty(ff, PortCLK) {
		return false
	}
	if netOrEmpty(slice, PortLSR) != "" && netOrEmpty(slice, PortLSR) != netOrEmpty(ff, PortLSR) {
		return false
	}
	if slice.ParamOr("CLKMUX", "CLK") != ff.ParamOr("CLKMUX", "CLK") {
		return false
	}
	if slice.ParamOr("LSRMUX", "LSR") != ff.ParamOr("LSRMUX", "LSR") {
		return false
	}
	if slice.ParamOr("SRMODE", "LSR_OVER_CE") != ff.ParamOr("SRMODE", "LSR_OVER_CE") {
		return false
	}
	return true
}

// clusterSize returns the number of cells in a cell's cluster (1 if it is
// not clustered at all).
func (p *Packer) clusterSize(c *Cell) int {
	root := c
	if c.Cluster != "" {
		if r, ok := p.nl.GetCell(c.Cluster); ok {
			root = r
		}
	}
	return 1 + len(root.Children)
}
