package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// eclkSlot is one of the two edge-clock slots a bank provides.
type eclkSlot struct {
	bank, slot int
}

// eclkInfo is the EdgeClockInfo record of §3: the unbuffered source net,
// the buffered net synthesized for it, and the TRELLIS_ECLKBUF cell bound
// to the slot.
type eclkInfo struct {
	source  IdString
	buf     IdString
	bufCell *Cell
}

// stageRouteEdgeClocks promotes the clock net feeding every IOLOGIC/DQSBUFM
// ECLK input onto the dedicated edge-clock network, per §4.4: one slot is
// reused if the bank already carries this net, otherwise a free slot (of
// the bank's two) is allocated and a TRELLIS_ECLKBUF synthesized and bound;
// exhausting both slots for a bank is Fatal.
func (p *Packer) stageRouteEdgeClocks() {
	Log(LOG_INFO, "Routing edge clocks...")
	slots := map[eclkSlot]eclkInfo{}

	for _, c := range p.nl.Cells() {
		if c.Type != TypeIOLOGIC && c.Type != TypeSIOLOGIC && c.Type != TypeDQSBUFM {
			continue
		}
		netName := c.PortNet("ECLK")
		if netName == "" {
			continue
		}
		if c.Bel.IsEmpty() {
			continue
		}
		bank, ok := p.bankOf(c.Bel)
		if !ok {
			continue
		}

		if info, slot, ok := p.findExistingSlot(slots, bank, netName); ok {
			p.reconnectToSlot(c, info, slot)
			continue
		}

		slot, ok := p.allocateSlot(slots, bank)
		if !ok {
			Log(LOG_ERR, "edge clocks exhausted in bank %d", bank)
			continue
		}

		info := p.synthesizeECLKBuf(netName, bank, slot.slot)
		slots[slot] = info
		p.eclkBels[netName] = info.bufCell.Bel
		p.reconnectToSlot(c, info, slot)
		p.routeECLKPath(c, info, bank, slot.slot)
	}
}

// bankOf resolves the I/O bank a PIO-adjacent bel belongs to. Out of scope
// banks (a bel the database doesn't recognize as belonging to any bank)
// simply skip edge-clock promotion for that cell.
func (p *Packer) bankOf(bel devdb.BelId) (int, bool) {
	wires := p.db.WiresOfBel(bel)
	if len(wires) == 0 {
		return 0, false
	}
	if p.db.Height() == 0 {
		return 0, true
	}
	return bel.Loc.Y * 4 / p.db.Height(), true
}

func (p *Packer) findExistingSlot(slots map[eclkSlot]eclkInfo, bank int, net IdString) (eclkInfo, eclkSlot, bool) {
	for s := 0; s < 2; s++ {
		key := eclkSlot{bank, s}
		if info, ok := slots[key]; ok && info.source == net {
			return info, key, true
		}
	}
	return eclkInfo{}, eclkSlot{}, false
}

func (p *Packer) allocateSlot(slots map[eclkSlot]eclkInfo, bank int) (eclkSlot, bool) {
	for s := 0; s < 2; s++ {
		key := eclkSlot{bank, s}
		if _, taken := slots[key]; !taken {
			return key, true
		}
	}
	return eclkSlot{}, false
}

// synthesizeECLKBuf creates the TRELLIS_ECLKBUF cell for a newly allocated
// slot, bound to the bel whose ECLKO wire matches G_BANK<n>ECLK<slot>, and
// the fresh ECP5_IS_GLOBAL net it drives.
func (p *Packer) synthesizeECLKBuf(source IdString, bank, slot int) eclkInfo {
	buf := p.nl.CreateCell(TypeECLKBuf, p.nl.AutoName("$eclkbuf"))
	bufNet := IdString(string(source) + "$eclk" + itoa(bank) + "_" + itoa(slot))
	p.nl.CreateNet(bufNet)
	ensurePort(buf, "ECLKI", PortIn)
	ensurePort(buf, "ECLKO", PortOut)
	p.nl.ConnectPort(buf.Name, "ECLKI", source)
	p.nl.ConnectPort(buf.Name, "ECLKO", bufNet)
	if n, ok := p.nl.GetNet(bufNet); ok {
		n.Attrs["ECP5_IS_GLOBAL"] = IntProp(1, 1)
	}

	for _, bel := range p.db.BelsOfKind(devdb.BelEClk) {
		for _, w := range p.db.WiresOfBel(bel) {
			if w.Name == "G_BANK"+itoa(bank)+"ECLK"+itoa(slot) {
				buf.Bel = bel
			}
		}
	}
	return eclkInfo{source: source, buf: bufNet, bufCell: buf}
}

// reconnectToSlot rewires a consumer's ECLK input onto the slot's buffered
// net, which is idempotent if it is already connected there.
func (p *Packer) reconnectToSlot(c *Cell, info eclkInfo, slot eclkSlot) {
	if c.PortNet("ECLK") == info.buf {
		return
	}
	p.nl.DisconnectPort(c.Name, "ECLK")
	p.nl.ConnectPort(c.Name, "ECLK", info.buf)
}

// routeECLKPath performs the bounded BFS of §4.4: starting from the
// consumer's ECLK input wire, walk pips upstream (up to EdgeClockBFSCap
// wires) until reaching a wire whose name matches BNK_ECLK<slot> or
// G_BANK<bank>ECLK<slot>. Only reachability is checked: no pip on the
// discovered path is bound to the buffered net. Failure to find a path is
// Fatal, since the consumer would otherwise be left with no legal route to
// its edge clock.
func (p *Packer) routeECLKPath(c *Cell, info eclkInfo, bank, slot int) {
	start, ok := p.eclkInputWire(c)
	if !ok {
		return
	}
	target1 := "BNK_ECLK" + itoa(slot)
	target2 := "G_BANK" + itoa(bank) + "ECLK" + itoa(slot)

	visited := map[devdb.WireId]bool{start: true}
	queue := []devdb.WireId{start}
	for len(queue) > 0 && len(visited) <= p.cfg.EdgeClockBFSCap {
		cur := queue[0]
		queue = queue[1:]
		if cur.Name == target1 || cur.Name == target2 {
			return
		}
		for _, next := range p.db.Neighbors(cur) {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	Log(LOG_ERR, "failed to route edge clock for %s: no path found within %d wires", c.Name, p.cfg.EdgeClockBFSCap)
}

func (p *Packer) eclkInputWire(c *Cell) (devdb.WireId, bool) {
	if c.Bel.IsEmpty() {
		return devdb.WireId{}, false
	}
	for _, w := range p.db.WiresOfBel(c.Bel) {
		if w.Name == "ECLK" {
			return w, true
		}
	}
	return devdb.WireId{}, false
}
