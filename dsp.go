package ecp5pack

// stagePackDSP checks and binds DSP shapes: a MULT18X18D that feeds an
// ALU54B's multiplier input must sit in the ALU's adjacent DSP slice, and
// every such pairing's clock wiring must agree, per §2 stage 7. A
// MULT18X18D whose output fans out anywhere other than its paired ALU54B
// is left as a standalone multiplier; only the ALU-paired shape is
// constrained here, matching the original's narrower "shape checking"
// scope (full DSP placement is left to the placer).
func (p *Packer) stagePackDSP() {
	Log(LOG_INFO, "Checking DSP shapes...")
	for _, c := range p.nl.Cells() {
		if c.Type != TypeMULT18X18D {
			continue
		}
		alu := p.findPairedALU(c)
		if alu == nil {
			continue
		}
		p.checkDSPClocks(c, alu)
		c.Cluster = alu.Name
		if alu.Cluster == "" {
			alu.Cluster = alu.Name
		}
		alu.Children = append(alu.Children, c.Name)
	}

	for _, c := range p.nl.Cells() {
		if c.Type != TypeMULT18X18D {
			continue
		}
		aReg := c.ParamOr("REG_INPUTA_CLK", "NONE") != "NONE"
		bReg := c.ParamOr("REG_INPUTB_CLK", "NONE") != "NONE"
		if aReg != bReg {
			Log(LOG_WARN, "MULT18X18D %s has partially registered inputs (A_REG=%v, B_REG=%v)", c.Name, aReg, bReg)
		}
	}
}

// findPairedALU returns the ALU54B cell a MULT18X18D's product output
// exclusively feeds, or nil if it has no such sole consumer.
func (p *Packer) findPairedALU(mult *Cell) *Cell {
	for _, port := range mult.Ports {
		if port.Dir != PortOut || port.Net == "" {
			continue
		}
		n, ok := p.nl.GetNet(port.Net)
		if !ok || n.UserCount() != 1 {
			continue
		}
		u := n.liveUsersSnapshot()[0]
		if cand, ok := p.nl.GetCell(u.Cell); ok && cand.Type == TypeALU54B {
			return cand
		}
	}
	return nil
}

// checkDSPClocks requires that a MULT18X18D sharing an ALU54B agree on
// every CLK0..CLK3 net they both connect, since the two share one clocking
// fabric once fused into the same DSP slice.
func (p *Packer) checkDSPClocks(mult, alu *Cell) {
	for _, clk := range []IdString{"CLK0", "CLK1", "CLK2", "CLK3"} {
		mNet := mult.PortNet(clk)
		aNet := alu.PortNet(clk)
		if mNet != "" && aNet != "" && mNet != aNet {
			Log(LOG_ERR, "MULT18X18D %s and ALU54B %s disagree on %s", mult.Name, alu.Name, clk)
		}
	}
}
