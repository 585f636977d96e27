package ecp5pack

// stagePairLUTs implements the LUT-LUT pairing heuristic of §4.2.2: for
// each unprocessed LUT, search in priority order for a partner unprocessed
// LUT, skipping candidates whose paired FFs (if any) are incompatible. The
// first match in priority order wins.
func (p *Packer) stagePairLUTs() {
	Log(LOG_INFO, "Pairing LUTs...")
	paired := map[IdString]bool{}

	var luts []*Cell
	for _, c := range p.nl.Cells() {
		if isLUT(c) {
			luts = append(luts, c)
		}
	}

	for _, l := range luts {
		if paired[l.Name] {
			continue
		}
		if partner := p.findLUTPartner(l, paired); partner != nil {
			p.lutPairs[l.Name] = partner.Name
			p.lutPairs[partner.Name] = l.Name
			paired[l.Name] = true
			paired[partner.Name] = true
		}
	}
}

// compatiblePartner checks the FF-compatibility side condition: if both
// candidates have paired FFs, those FFs must be mutually compatible per
// §4.2.3; if only one (or neither) has a paired FF, there is no conflict.
func (p *Packer) compatiblePartner(l, cand *Cell) bool {
	lFF, lHasFF := p.lutffPairs[l.Name]
	cFF, cHasFF := p.lutffPairs[cand.Name]
	if !lHasFF || !cHasFF {
		return true
	}
	ffA, ok := p.nl.GetCell(lFF)
	if !ok {
		return true
	}
	ffB, ok := p.nl.GetCell(cFF)
	if !ok {
		return true
	}
	return canPackFFs(ffA, ffB)
}

// findLUTPartner tries each priority tier of §4.2.2 in order and returns
// the first acceptable, not-yet-paired candidate LUT.
func (p *Packer) findLUTPartner(l *Cell, paired map[IdString]bool) *Cell {
	accept := func(cand *Cell) bool {
		return cand != nil && cand.Name != l.Name && !paired[cand.Name] && isLUT(cand) && p.compatiblePartner(l, cand)
	}

	// 1. Fanout pairing: a LUT driven by L's Z.
	if znet := l.PortNet(PortZ); znet != "" {
		if n, ok := p.nl.GetNet(znet); ok {
			for _, u := range n.liveUsersSnapshot() {
				if cand, ok := p.nl.GetCell(u.Cell); ok && accept(cand) {
					return cand
				}
			}
		}
	}

	// 2. FF-fanout pairing: a LUT driven by L's paired FF's Q.
	if ffName, ok := p.lutffPairs[l.Name]; ok {
		if ff, ok := p.nl.GetCell(ffName); ok {
			if qnet := ff.PortNet(PortQ); qnet != "" {
				if n, ok := p.nl.GetNet(qnet); ok {
					for _, u := range n.liveUsersSnapshot() {
						if cand, ok := p.nl.GetCell(u.Cell); ok && accept(cand) {
							return cand
						}
					}
				}
			}
		}
	}

	// 3. Fan-in pairing: a LUT driving one of L's inputs directly, or via
	// its paired FF.
	for _, in := range []IdString{PortA, PortB, PortC, PortD} {
		netName := l.PortNet(in)
		if netName == "" {
			continue
		}
		n, ok := p.nl.GetNet(netName)
		if !ok || n.Driver.IsZero() {
			continue
		}
		drv, ok := p.nl.GetCell(n.Driver.Cell)
		if !ok {
			continue
		}
		if accept(drv) {
			return drv
		}
		if isFF(drv) {
			if lutName, ok := p.fflutPairs[drv.Name]; ok {
				if cand, ok := p.nl.GetCell(lutName); ok && accept(cand) {
					return cand
				}
			}
		}
	}

	// 4. Common-sink pairing: if L's fanout is small, another LUT feeding
	// the same downstream carry/BRAM/FF.
	if fanout(p.nl, l, PortZ) <= p.cfg.LUTPairFanoutLo {
		if znet := l.PortNet(PortZ); znet != "" {
			if n, ok := p.nl.GetNet(znet); ok {
				for _, u := range n.liveUsersSnapshot() {
					sink, ok := p.nl.GetCell(u.Cell)
					if !ok {
						continue
					}
					for _, sinkIn := range sink.Ports {
						if sinkIn.Net == "" || sinkIn.Net == znet {
							continue
						}
						if sn, ok := p.nl.GetNet(sinkIn.Net); ok && !sn.Driver.IsZero() {
							if cand, ok := p.nl.GetCell(sn.Driver.Cell); ok && accept(cand) {
								return cand
							}
						}
					}
				}
			}
		}
	}

	// 5. Common-input pairing: another LUT sharing a low-fanout input net,
	// candidates ordered by input-net fanout ascending.
	type candFanout struct {
		cell    *Cell
		fanout  int
	}
	var candidates []candFanout
	for _, in := range []IdString{PortA, PortB, PortC, PortD} {
		netName := l.PortNet(in)
		if netName == "" {
			continue
		}
		n, ok := p.nl.GetNet(netName)
		if !ok || n.UserCount() > p.cfg.LUTPairFanoutHi {
			continue
		}
		for _, u := range n.liveUsersSnapshot() {
			if u.Cell == l.Name {
				continue
			}
			cand, ok := p.nl.GetCell(u.Cell)
			if !ok || !accept(cand) {
				continue
			}
			candidates = append(candidates, candFanout{cand, n.UserCount()})
		}
	}
	var best *candFanout
	for i := range candidates {
		if best == nil || candidates[i].fanout < best.fanout {
			best = &candidates[i]
		}
	}
	if best != nil {
		return best.cell
	}

	return nil
}
