package ecp5pack

// isTopPort reports whether a port reference names one of the handful of
// DCU/EXTREFB pins that must be wired directly to a top-level package pin
// and nowhere else, per §4 (supplemented from is_top_port in the original).
func isTopPort(nl *Netlist, ref PortRef) bool {
	c, ok := nl.GetCell(ref.Cell)
	if !ok {
		return false
	}
	switch c.Type {
	case TypeDCUA:
		switch ref.Port {
		case "CH0_HDINP", "CH0_HDINN", "CH0_HDOUTP", "CH0_HDOUTN",
			"CH1_HDINP", "CH1_HDINN", "CH1_HDOUTP", "CH1_HDOUTN":
			return true
		}
		return false
	case TypeEXTREFB:
		return ref.Port == "REFCLKP" || ref.Port == "REFCLKN"
	default:
		return false
	}
}

// drivesTopPort reports whether a net's sole connection (driver or single
// user) is a top-level DCU/EXTREFB pin, returning that endpoint. A net
// reaching such a pin may have no other connection at all; violating that
// is Fatal, matching the original's log_error in the same situation.
func drivesTopPort(nl *Netlist, netName IdString) (PortRef, bool) {
	n, ok := nl.GetNet(netName)
	if !ok {
		return PortRef{}, false
	}
	users := n.liveUsersSnapshot()
	for _, u := range users {
		if isTopPort(nl, u) {
			if len(users) > 1 {
				Log(LOG_ERR, "port %s must be connected to (and only to) a top level pin", u)
			}
			return u, true
		}
	}
	if !n.Driver.IsZero() && isTopPort(nl, n.Driver) {
		if len(users) > 1 {
			Log(LOG_ERR, "port %s must be connected to (and only to) a top level pin", n.Driver)
		}
		return n.Driver, true
	}
	return PortRef{}, false
}

// isTrellisIO reports whether a cell is an already-placed or
// soon-to-be-created physical I/O pad cell.
func isTrellisIO(c *Cell) bool { return c.Type == TypeTrellisIO }

// stagePackIO absorbs the generic $nextpnr_ibuf/$nextpnr_obuf/$nextpnr_iobuf
// placeholder cells a synthetic or device-agnostic netlist uses to mark a
// top-level port, replacing each with a physical TRELLIS_IO pad cell (or
// folding it away entirely when it already feeds one, or a DCU/EXTREFB top
// pin).
func (p *Packer) stagePackIO() {
	Log(LOG_INFO, "Packing IOs...")
	for _, ci := range p.nl.Cells() {
		if !isIOB(ci) {
			continue
		}

		var ioNet IdString
		switch ci.Type {
		case TypeIBuf, TypeIOBuf:
			ioNet = ci.PortNet(PortO)
		case TypeOBuf:
			ioNet = ci.PortNet(PortI)
		}

		var trio *Cell
		if ioNet != "" {
			trio = netOnlyDrives(p.nl, ioNet, isTrellisIO, PortB, true)
		}

		switch {
		case trio != nil:
			Log(LOG_INFO, "%s feeds TRELLIS_IO %s, removing %s.", ci.Name, trio.Name, ci.Name)
			if cc, ok := p.nl.GetNet(trio.PortNet(PortB)); ok {
				if cc.Clock.Set {
					if onet, ok2 := p.nl.GetNet(trio.PortNet(PortO)); ok2 && !onet.Clock.Set {
						onet.Clock, cc.Clock = cc.Clock, onet.Clock
					}
				}
			}
		case ioNet != "":
			if tp, ok := drivesTopPort(p.nl, ioNet); ok {
				Log(LOG_INFO, "%s feeds top-level port %s, removing %s.", ci.Name, tp, ci.Name)
				p.nl.EraseNet(ioNet)
			} else {
				trio = p.createTrellisIOFor(ci)
			}
		default:
			trio = p.createTrellisIOFor(ci)
		}

		for portName := range ci.Ports {
			p.nl.DisconnectPort(ci.Name, portName)
		}
		p.nl.EraseCell(ci.Name)

		if trio != nil {
			for k, v := range ci.Attrs {
				trio.Attrs[k] = v
			}
			if loc, ok := trio.Attrs["LOC"]; ok {
				pin := loc.AsString()
				if bel, ok := p.db.PackagePinBel(pin); ok {
					trio.Bel = bel
					Log(LOG_INFO, "pin '%s' constrained to bel '%s'.", pin, bel)
				} else {
					Log(LOG_ERR, "I/O pin '%s' constrained to pin '%s', which does not exist on this package.", trio.Name, pin)
				}
			}
		}
	}
}

// createTrellisIOFor synthesizes the physical pad cell standing in for a
// placeholder I/O buffer, wiring its I/O/T ports from the placeholder's.
func (p *Packer) createTrellisIOFor(ci *Cell) *Cell {
	trio := p.nl.CreateCell(TypeTrellisIO, IdString(string(ci.Name)+"$tr_io"))
	switch ci.Type {
	case TypeIBuf:
		p.nl.MovePortTo(ci.Name, PortO, trio.Name, PortO)
		trio.Params["DIR"] = StringProp("INPUT")
	case TypeOBuf:
		p.nl.MovePortTo(ci.Name, PortI, trio.Name, PortI)
		trio.Params["DIR"] = StringProp("OUTPUT")
	case TypeIOBuf:
		p.nl.MovePortTo(ci.Name, PortO, trio.Name, PortO)
		p.nl.MovePortTo(ci.Name, PortI, trio.Name, PortI)
		p.nl.MovePortTo(ci.Name, PortT, trio.Name, PortT)
		trio.Params["DIR"] = StringProp("BIDIR")
	}
	return trio
}
