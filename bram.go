package ecp5pack

// stagePackBRAM normalizes every DP16KD cell: a block RAM instantiated in
// PDP (pseudo-dual-port, one shared address/data path) mode is rewritten
// into the device's native DP (true dual-port) representation, and any
// control/chip-select port the source left unconnected is tied off to its
// documented default so every DP16KD leaving this pass has a complete,
// device-legal port set.
func (p *Packer) stagePackBRAM() {
	Log(LOG_INFO, "Normalizing block RAMs...")
	for _, c := range p.nl.Cells() {
		if c.Type != TypeDP16KD {
			continue
		}
		if c.ParamOr("DATA_WIDTH_A", "18") == "PDP" || c.ParamOr("MODE", "DP") == "PDP" {
			p.rewritePDPToDevice(c)
		}
		p.tieOffBRAMControls(c)
	}
}

// rewritePDPToDevice mirrors port A's configuration onto port B so a PDP
// instantiation (which shares one address/data path) becomes the
// symmetric DP cell the device actually implements.
func (p *Packer) rewritePDPToDevice(c *Cell) {
	c.Params["MODE"] = StringProp("DP")
	for _, suffix := range []string{"CLK", "CE", "RST"} {
		if net := c.PortNet(IdString(suffix + "A")); net != "" && c.PortNet(IdString(suffix+"B")) == "" {
			ensurePort(c, IdString(suffix+"B"), PortIn)
			p.nl.ConnectPort(c.Name, IdString(suffix+"B"), net)
		}
	}
}

// tieOffBRAMControls connects every control/chip-select port DP16KD exposes
// but the source netlist left floating to its documented inactive default,
// so placement never has to special-case a partially wired BRAM.
func (p *Packer) tieOffBRAMControls(c *Cell) {
	defaults := map[string]string{
		"CEA": "1", "CEB": "1",
		"OCEA": "1", "OCEB": "1",
		"WEA": "0", "WEB": "0",
		"RSTA": "0", "RSTB": "0",
		"CSA0": "0", "CSA1": "0", "CSA2": "0",
		"CSB0": "0", "CSB1": "0", "CSB2": "0",
	}
	for port, def := range defaults {
		if c.PortNet(IdString(port)) == "" {
			c.Params[IdString(port+"MUX")] = StringProp(def)
		}
	}
}
