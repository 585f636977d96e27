package ecp5pack

// This file gathers the small cell-type and net predicates that the original
// packer scatters throughout its packing class (is_lut, is_ff, is_carry, and
// friends in pack.cc) and that nearly every stage in this package needs.

func isLUT(c *Cell) bool    { return c.Type == TypeLUT4 }
func isPFUMux(c *Cell) bool { return c.Type == TypePFUMX }
func isL6Mux(c *Cell) bool  { return c.Type == TypeL6MUX21 }
func isFF(c *Cell) bool     { return c.Type == TypeTrellisFF }
func isCarry(c *Cell) bool  { return c.Type == TypeCCU2C }
func isDPRAM(c *Cell) bool  { return c.Type == TypeDPRAM16 }
func isSlice(c *Cell) bool  { return c.Type == TypeSlice }

// isLC reports whether a cell is one of the "logic cell" primitive types a
// SLICE is ultimately built from: a LUT, a LUT5/6/7 mux stage, or a carry
// cell.
func isLC(c *Cell) bool {
	return isLUT(c) || isPFUMux(c) || isL6Mux(c) || isCarry(c)
}

func isIOB(c *Cell) bool {
	return c.Type == TypeIBuf || c.Type == TypeOBuf || c.Type == TypeIOBuf
}

func isConst(c *Cell) bool {
	return c.Type == TypeVCC || c.Type == TypeGND
}

// netOrEmpty returns the net name connected to a cell's port, or "" if the
// cell has no such port or it is unconnected. Named after the original's
// net_or_nullptr.
func netOrEmpty(c *Cell, port IdString) IdString {
	return c.PortNet(port)
}

// netOnlyDrives walks a net's live users and returns the single cell
// satisfying pred that the net exclusively drives into port `port`, or nil
// if the net drives zero or more than one such cell, or drives any other
// user at all (when strict is true). This mirrors net_only_drives in
// design_utils.cc, used throughout §4.2 to find an FF fed solely by a LUT's,
// mux's or carry cell's output.
func netOnlyDrives(nl *Netlist, netName IdString, pred func(*Cell) bool, port IdString, strict bool) *Cell {
	n, ok := nl.GetNet(netName)
	if !ok {
		return nil
	}
	var found *Cell
	for _, idx := range n.liveUsers() {
		u := n.Users[idx]
		c, ok := nl.GetCell(u.Cell)
		if !ok {
			continue
		}
		if u.Port != port || !pred(c) {
			if strict {
				return nil
			}
			continue
		}
		if found != nil && found.Name != c.Name {
			return nil
		}
		found = c
	}
	return found
}

// fanout returns the number of live users of the net driven by a cell's
// port, or 0 if the port is unconnected. Used by the LUT-pairing fanout
// heuristic (§4.2.2).
func fanout(nl *Netlist, c *Cell, port IdString) int {
	netName := c.PortNet(port)
	if netName == "" {
		return 0
	}
	n, ok := nl.GetNet(netName)
	if !ok {
		return 0
	}
	return n.UserCount()
}

// canPackFFs reports whether two flip-flops can share a slice: their
// clock/reset/enable nets and CLKMUX/LSRMUX/CEMUX/GSR/SRMODE parameters
// must all agree, per §4.2.3.
func canPackFFs(a, b *Cell) bool {
	if a.ParamOr("GSR", "DISABLED") != b.ParamOr("GSR", "DISABLED") {
		return false
	}
	if a.ParamOr("SRMODE", "LSR_OVER_CE") != b.ParamOr("SRMODE", "LSR_OVER_CE") {
		return false
	}
	if a.ParamOr("CEMUX", "1") != b.ParamOr("CEMUX", "1") {
		return false
	}
	if a.ParamOr("LSRMUX", "LSR") != b.ParamOr("LSRMUX", "LSR") {
		return false
	}
	if a.ParamOr("CLKMUX", "CLK") != b.ParamOr("CLKMUX", "CLK") {
		return false
	}
	if netOrEmpty(a, PortCLK) != netOrEmpty(b, PortCLK) {
		return false
	}
	if netOrEmpty(a, PortCE) != netOrEmpty(b, PortCE) {
		return false
	}
	if netOrEmpty(a, PortLSR) != netOrEmpty(b, PortLSR) {
		return false
	}
	return true
}
