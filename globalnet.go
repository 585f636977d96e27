package ecp5pack

// inputOnlyTypes is the input-only set of §8 property 2: any cell of one
// of these types surviving past packing means some stage failed to absorb
// it, which would otherwise go unnoticed until placement rejected it.
var inputOnlyTypes = map[IdString]bool{
	TypePFUMX: true, TypeL6MUX21: true, TypeCCU2C: true, TypeDPRAM16: true,
	TypeIDDRX1F: true, TypeODDRX1F: true, TypeIDDRX2F: true, TypeODDRX2F: true,
	TypeIDDR71B: true, TypeODDR71B: true, TypeOSHX2A: true,
	TypeTSHX2DQA: true, TypeTSHX2DQSA: true, TypeIDDRX2DQA: true,
	TypeODDRX2DQA: true, TypeODDRX2DQSB: true, TypeDELAYF: true, TypeDELAYG: true,
	TypeGND: true, TypeVCC: true,
	TypeIBuf: true, TypeOBuf: true, TypeIOBuf: true,
}

// stagePromoteGlobals is the final stage: it promotes high-fanout clock
// nets onto the dedicated global network (a heuristic this module adds
// beyond spec.md's high-level stage description, see DESIGN.md), then runs
// the post-pack integrity check of §8 properties 1 and 2.
func (p *Packer) stagePromoteGlobals() {
	Log(LOG_INFO, "Promoting global nets...")
	for _, n := range p.nl.Nets() {
		if _, ok := n.Attrs["ECP5_IS_GLOBAL"]; ok {
			continue
		}
		if !p.feedsClockPort(n) {
			continue
		}
		if n.UserCount() < p.cfg.GlobalPromotionFanout {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = map[IdString]Property{}
		}
		n.Attrs["ECP5_IS_GLOBAL"] = IntProp(1, 1)
		Log(LOG_INFO, "net %s promoted to global (fanout %d)", n.Name, n.UserCount())
	}

	p.checkIntegrity()
}

// feedsClockPort reports whether any live user of n connects to a CLK,
// ECLK, or LSR port, the ports the global network is built to serve.
func (p *Packer) feedsClockPort(n *Net) bool {
	for _, u := range n.liveUsersSnapshot() {
		switch u.Port {
		case PortCLK, PortLSR, "ECLK":
			return true
		}
	}
	return false
}

// checkIntegrity verifies §8's two universally quantified invariants: every
// port/net connection is bidirectionally consistent, and no input-only
// primitive survived packing. Both are treated as fatal, since either
// would mean this module itself has a bug rather than the input design.
func (p *Packer) checkIntegrity() {
	for _, c := range p.nl.Cells() {
		if inputOnlyTypes[c.Type] {
			Log(LOG_ERR, "cell %s of input-only type %s survived packing", c.Name, c.Type)
		}
		for portName, port := range c.Ports {
			if port.Net == "" {
				continue
			}
			n, ok := p.nl.GetNet(port.Net)
			if !ok {
				Log(LOG_ERR, "cell %s port %s references missing net %s", c.Name, portName, port.Net)
				continue
			}
			if port.Dir == PortOut {
				if n.Driver.Cell != c.Name || n.Driver.Port != portName {
					Log(LOG_ERR, "net %s driver mismatch: cell %s port %s claims to drive it", n.Name, c.Name, portName)
				}
				continue
			}
			found := false
			for _, u := range n.liveUsersSnapshot() {
				if u.Cell == c.Name && u.Port == portName {
					found = true
					break
				}
			}
			if !found {
				Log(LOG_ERR, "net %s has no matching user entry for cell %s port %s", n.Name, c.Name, portName)
			}
		}
	}
}
