package ecp5pack

import "math"

// stagePropagateClockConstraints runs the fixed-point worklist of §4.5:
// starting from every net a user already constrained, it pushes derived
// periods through clock dividers, buffers, bridges, PLLs, and the internal
// oscillator until nothing changes or the iteration cap is hit. A net
// carrying both a user constraint and a freshly computed one keeps the
// user's value, warning if the two disagree by more than 0.1% relative.
func (p *Packer) stagePropagateClockConstraints() {
	Log(LOG_INFO, "Propagating clock constraints...")

	queue := make([]IdString, 0, len(p.nl.Nets()))
	queued := map[IdString]bool{}
	for _, n := range p.nl.Nets() {
		if n.Clock.Set {
			queue = append(queue, n.Name)
			queued[n.Name] = true
		}
	}
	// An OSCG has no clock input to be reached through, so its output is
	// derived up front.
	for _, c := range p.nl.Cells() {
		if c.Type != TypeOSCG {
			continue
		}
		for _, outNet := range p.deriveClockOutputs(c, "", ClockConstraint{}) {
			if !queued[outNet] {
				queue = append(queue, outNet)
				queued[outNet] = true
			}
		}
	}

	iterations := 0
	for len(queue) > 0 {
		iterations++
		if iterations > p.cfg.ClockIterationLimit {
			Log(LOG_WARN, "clock constraint propagation exceeded %d iterations, dropping remaining changes", p.cfg.ClockIterationLimit)
			return
		}

		net := queue[0]
		queue = queue[1:]
		queued[net] = false

		n, ok := p.nl.GetNet(net)
		if !ok {
			continue
		}
		for _, u := range n.liveUsersSnapshot() {
			c, ok := p.nl.GetCell(u.Cell)
			if !ok {
				continue
			}
			for _, outNet := range p.deriveClockOutputs(c, u.Port, n.Clock) {
				if !queued[outNet] {
					queue = append(queue, outNet)
					queued[outNet] = true
				}
			}
		}
	}
}

// deriveClockOutputs applies the rule table of §4.5 for the cell a clock
// input just updated, returning the output nets whose constraint changed
// and should be requeued.
func (p *Packer) deriveClockOutputs(c *Cell, inPort IdString, in ClockConstraint) []IdString {
	switch c.Type {
	case TypeCLKDIVF:
		if inPort != PortCLK && inPort != "CLKI" {
			return nil
		}
		mult := 2.0
		if c.ParamOr("DIV", "2.0") == "3.5" {
			mult = 3.5
		}
		return p.applyDerived(c, "CDIVX", ClockConstraint{Set: true, Period: in.Period * mult})

	case TypeECLKSyncB, TypeECLKBuf, TypeDCCA:
		if inPort != "ECLKI" && inPort != PortCLK && inPort != "CLKI" {
			return nil
		}
		out := IdString("ECLKO")
		if c.Type == TypeDCCA {
			out = "CLKO"
		}
		return p.applyDerived(c, out, in)

	case TypeECLKBridge:
		if inPort != "CLK0" && inPort != "CLK1" {
			return nil
		}
		merged := in
		if other := c.PortNet(otherOf(inPort)); other != "" {
			if on, ok := p.nl.GetNet(other); ok && on.Clock.Set && on.Clock.Period < merged.Period {
				merged = on.Clock
			}
		}
		return p.applyDerived(c, "ECSOUT", ClockConstraint{Set: true, Period: merged.Period})

	case TypeEHXPLLL:
		return p.derivePLLOutputs(c, inPort, in)

	case TypeOSCG:
		div := c.ParamOr("DIV", "128")
		divVal := parseIntOr(div, 128)
		period := (1e6 / (2.0 * 155.0)) * float64(divVal)
		return p.applyDerived(c, "OSC", ClockConstraint{Set: true, Period: period})
	}
	return nil
}

func otherOf(port IdString) IdString {
	if port == "CLK0" {
		return "CLK1"
	}
	return "CLK0"
}

// derivePLLOutputs implements the EHXPLLL VCO and per-output formulas,
// warning if the computed VCO frequency falls outside the device's legal
// 400-800 MHz range.
func (p *Packer) derivePLLOutputs(c *Cell, inPort IdString, in ClockConstraint) []IdString {
	if inPort != "CLKI" {
		return nil
	}
	clkiDiv := float64(parseIntOr(c.ParamOr("CLKI_DIV", "1"), 1))
	fbDiv := float64(parseIntOr(c.ParamOr("CLKFB_DIV", "1"), 1))
	if fbDiv == 0 {
		fbDiv = 1
	}
	vcoPeriod := in.Period * clkiDiv / fbDiv
	vcoFreqMHz := 1000.0 / vcoPeriod
	if vcoFreqMHz < 400.0 || vcoFreqMHz > 800.0 {
		Log(LOG_WARN, "EHXPLLL %s VCO frequency %.1f MHz is outside the legal 400-800 MHz range", c.Name, vcoFreqMHz)
	}

	var changed []IdString
	for _, out := range []string{"CLKOP", "CLKOS", "CLKOS2", "CLKOS3"} {
		div := parseIntOr(c.ParamOr(IdString(out+"_DIV"), "1"), 1)
		if div <= 0 {
			div = 1
		}
		changed = append(changed, p.applyDerived(c, IdString(out), ClockConstraint{
			Set: true, Period: vcoPeriod * float64(div),
		})...)
	}
	return changed
}

// applyDerived writes a derived constraint onto a cell's output port's net,
// returning the net name (for requeuing) if anything actually changed.
func (p *Packer) applyDerived(c *Cell, port IdString, cc ClockConstraint) []IdString {
	netName := c.PortNet(port)
	if netName == "" {
		return nil
	}
	n, ok := p.nl.GetNet(netName)
	if !ok {
		return nil
	}
	if n.Clock.UserSet {
		if n.Clock.Period != 0 {
			rel := math.Abs(cc.Period-n.Clock.Period) / n.Clock.Period
			if rel > 0.001 {
				Log(LOG_WARN, "net %s: user clock constraint %.4gns disagrees with derived %.4gns by %.2f%%",
					netName, n.Clock.Period, cc.Period, rel*100)
			}
		}
		return nil
	}
	if n.Clock.Set && n.Clock.Period == cc.Period {
		return nil
	}
	n.Clock = cc
	return []IdString{netName}
}

func parseIntOr(s string, def int) int {
	if s == "" {
		return def
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	val := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return def
		}
		val = val*10 + int(s[i]-'0')
	}
	if neg {
		val = -val
	}
	return val
}
