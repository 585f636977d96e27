package ecp5pack

import "strings"

// rewriteInitBit recomputes an N-bit LUT init mask with input index forced
// to value v, per §4.1: for minterm m, the new value is whatever the
// original mask holds at the minterm with bit `index` set to v. This is a
// full variable substitution, not just a fixup of the minterms that
// disagree, so it is correct regardless of the current value of bit
// `index` in m.
func rewriteInitBit(init uint64, bits int, index int, v int) uint64 {
	var out uint64
	n := 1 << uint(bits)
	for m := 0; m < n; m++ {
		src := m
		if v == 0 {
			src = m &^ (1 << uint(index))
		} else {
			src = m | (1 << uint(index))
		}
		if (init>>uint(src))&1 != 0 {
			out |= 1 << uint(m)
		}
	}
	return out
}

const packerGND = IdString("$PACKER_GND")
const packerGNDNet = IdString("$PACKER_GND_NET")
const packerVCC = IdString("$PACKER_VCC")
const packerVCCNet = IdString("$PACKER_VCC_NET")

// tieNet lazily creates the shared tie-low or tie-high net (and its driving
// LUT4), used whenever a constant user can't be folded away entirely.
func (p *Packer) tieNet(value int) IdString {
	name, cellName := packerGNDNet, packerGND
	init := uint64(0)
	if value != 0 {
		name, cellName = packerVCCNet, packerVCC
		init = 0xFFFF
	}
	if _, ok := p.nl.GetNet(name); ok {
		return name
	}
	p.nl.CreateNet(name)
	c := p.nl.CreateCell(TypeLUT4, cellName)
	c.Params["INIT"] = IntProp(int64(init), 16)
	p.nl.ConnectPort(cellName, PortZ, name)
	return name
}

// stagePackConstants folds GND/VCC drivers into LUT/CCU2 init masks and
// tie-muxes, per §4.1's per-consumer-type policy table, creating the shared
// tie nets only when some user could not be folded away entirely.
func (p *Packer) stagePackConstants() {
	Log(LOG_INFO, "Packing constants...")
	for _, c := range p.nl.Cells() {
		if !isConst(c) {
			continue
		}
		value := 0
		if c.Type == TypeVCC {
			value = 1
		}
		netName := c.PortNet(PortZ)
		if netName == "" {
			p.nl.EraseCell(c.Name)
			continue
		}
		n, ok := p.nl.GetNet(netName)
		if !ok {
			p.nl.EraseCell(c.Name)
			continue
		}
		for _, u := range n.liveUsersSnapshot() {
			p.foldConstantUser(u, value)
		}
		p.nl.EraseNet(netName)
		p.nl.EraseCell(c.Name)
	}
}

// foldConstantUser rewrites a single constant consumer per the table in
// §4.1, falling back to the shared tie net for any consumer shape not
// covered by a more specific fold.
func (p *Packer) foldConstantUser(u PortRef, value int) {
	c, ok := p.nl.GetCell(u.Cell)
	if !ok {
		return
	}
	p.nl.DisconnectPort(u.Cell, u.Port)

	switch {
	case isLUT(c) && isLUTInputPort(u.Port):
		idx := lutInputIndex(u.Port)
		init := uint64(0)
		if iv, ok := c.Params["INIT"]; ok {
			init = uint64(iv.Int)
		}
		c.Params["INIT"] = IntProp(int64(rewriteInitBit(init, 4, idx, value)), 16)

	case isFF(c) && u.Port == PortCE:
		if value == 0 {
			c.Params["CEMUX"] = StringProp("0")
		} else {
			c.Params["CEMUX"] = StringProp("1")
		}

	case isFF(c) && u.Port == PortLSR && c.ParamOr("LSRMUX", "LSR") == "LSR" && value == 0:
		// disconnect only, no parameter change needed

	case isFF(c) && u.Port == PortLSR && c.ParamOr("LSRMUX", "LSR") == "LSR":
		// LSR tied high with LSRMUX=LSR means reset stays permanently
		// asserted; that can't be folded away, so attach the real tie net.
		p.nl.ConnectPort(u.Cell, u.Port, p.tieNet(value))

	case isCarry(c) && isCarryDataPort(u.Port):
		p.foldCarryPort(c, u.Port, value)

	case c.Type == TypeDP16KD && isBRAMControlPort(u.Port):
		if value == 0 {
			c.Params[IdString(string(u.Port)+"MUX")] = StringProp("INV")
		} else {
			c.Params[IdString(string(u.Port)+"MUX")] = StringProp(string(u.Port))
		}

	case c.Type == TypeDP16KD:
		c.Params[IdString(string(u.Port)+"MUX")] = StringProp(itoa(value))

	case (c.Type == TypeMULT18X18D || c.Type == TypeALU54B) && isDSPControlPort(u.Port):
		p.nl.ConnectPort(u.Cell, u.Port, p.tieNet(value))

	case c.Type == TypeMULT18X18D || c.Type == TypeALU54B:
		c.Params[IdString(string(u.Port)+"MUX")] = StringProp(itoa(value))

	default:
		p.nl.ConnectPort(u.Cell, u.Port, p.tieNet(value))
	}
}

func isLUTInputPort(p IdString) bool {
	return p == PortA || p == PortB || p == PortC || p == PortD
}

func lutInputIndex(p IdString) int {
	switch p {
	case PortA:
		return 0
	case PortB:
		return 1
	case PortC:
		return 2
	case PortD:
		return 3
	}
	return 0
}

func isCarryDataPort(p IdString) bool {
	switch p {
	case "A0", "A1", "B0", "B1", "C0", "C1", "D0", "D1":
		return true
	}
	return false
}

func isBRAMControlPort(p IdString) bool {
	switch p {
	case "CLKA", "CLKB", "CEA", "CEB", "OCEA", "OCEB", "WEA", "WEB", "RSTA", "RSTB",
		"CSA0", "CSA1", "CSA2", "CSB0", "CSB1", "CSB2":
		return true
	}
	return false
}

// isDSPControlPort recognizes the DSP ports that resolve a constant driver
// by tying to the shared tie net rather than folding into a MUX param: the
// clock/enable/reset/cascade/control family, per pack.cc's
// is_dsp_control_port classification. Everything else (the ABCD data ports)
// gets the <port>MUX treatment instead.
func isDSPControlPort(p IdString) bool {
	s := string(p)
	for _, prefix := range []string{
		"CLK", "CE", "RST", "SRO", "SRI", "RO", "MA", "MB",
		"CFB", "CIN", "SOURCE", "SIGNED", "OP",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// carryPartnerPort returns the C/D port that shares an INIT bit position
// with the given one (C0<->D0, C1<->D1), used to decide whether a D (or C)
// input folded to zero can borrow the partner's already-tied-high state.
func carryPartnerPort(port IdString) IdString {
	switch port {
	case "C0":
		return "D0"
	case "D0":
		return "C0"
	case "C1":
		return "D1"
	case "D1":
		return "C1"
	}
	return ""
}

// portTiedHigh reports whether a cell's port is already effectively driven
// high: unconnected (ties high automatically, per CCU2C's pin default),
// wired to the shared VCC tie net, or driven by a VCC cell directly.
func (p *Packer) portTiedHigh(c *Cell, port IdString) bool {
	net := c.PortNet(port)
	if net == "" || net == packerVCCNet {
		return true
	}
	n, ok := p.nl.GetNet(net)
	if !ok || n.Driver.IsZero() {
		return false
	}
	drv, ok := p.nl.GetCell(n.Driver.Cell)
	return ok && drv.Type == TypeVCC
}

// foldCarryPort implements §4.1's CCU2C-specific tie-high substitution
// rules. A 1-input on any of A0..D1 just disconnects (CCU2C pins tie high
// automatically when left unconnected), so only the 0-input case needs
// further action: A/B fold straight into the init mask, while C/D may only
// fold into the init mask when their partner port is already tied high --
// otherwise they need a real connection to the tie-low net.
func (p *Packer) foldCarryPort(c *Cell, port IdString, value int) {
	sub := 0 // which half (0 or 1) of the dual carry cell
	if port == "A1" || port == "B1" || port == "C1" || port == "D1" {
		sub = 1
	}
	initKey := IdString("INIT" + itoa(sub))

	switch port {
	case "A0", "A1", "B0", "B1":
		if value == 1 {
			return
		}
		idx := 0
		if port == "B0" || port == "B1" {
			idx = 1
		}
		init := uint64(0)
		if iv, ok := c.Params[initKey]; ok {
			init = uint64(iv.Int)
		}
		c.Params[initKey] = IntProp(int64(rewriteInitBit(init, 4, idx, value)), 16)
	case "C0", "C1", "D0", "D1":
		if value == 1 {
			return
		}
		if p.portTiedHigh(c, carryPartnerPort(port)) {
			idx := 2
			if port == "D0" || port == "D1" {
				idx = 3
			}
			init := uint64(0)
			if iv, ok := c.Params[initKey]; ok {
				init = uint64(iv.Int)
			}
			c.Params[initKey] = IntProp(int64(rewriteInitBit(init, 4, idx, value)), 16)
			return
		}
		p.nl.ConnectPort(c.Name, port, p.tieNet(0))
	}
}
