package ecp5pack

// stagePrepack is the first pass: it validates that the input netlist is
// well-formed enough to pack at all, before any cell is touched. A
// malformed netlist here means the loader (or whatever produced it)
// violated an invariant this package assumes everywhere else, so every
// failure is Fatal rather than a Warning.
func (p *Packer) stagePrepack() {
	for _, c := range p.nl.Cells() {
		for portName, port := range c.Ports {
			if port.Net == "" {
				continue
			}
			if _, ok := p.nl.GetNet(port.Net); !ok {
				Log(LOG_ERR, "cell %s port %s refers to missing net %s", c.Name, portName, port.Net)
			}
		}
	}
	for _, n := range p.nl.Nets() {
		if !n.Driver.IsZero() {
			drv, ok := p.nl.GetCell(n.Driver.Cell)
			if !ok {
				Log(LOG_ERR, "net %s driven by missing cell %s", n.Name, n.Driver.Cell)
				continue
			}
			if _, ok := drv.Ports[n.Driver.Port]; !ok {
				Log(LOG_ERR, "net %s driver %s has no port %s", n.Name, n.Driver.Cell, n.Driver.Port)
			}
		}
		for _, u := range n.liveUsersSnapshot() {
			if _, ok := p.nl.GetCell(u.Cell); !ok {
				Log(LOG_ERR, "net %s user refers to missing cell %s", n.Name, u.Cell)
			}
		}
	}

	// Reject $nextpnr_obuf/$nextpnr_iobuf placeholders with no I port. The
	// absorption of these placeholders into TRELLIS_IO happens in
	// stagePackIO; this pass only rejects cells too malformed to reach it.
	for _, c := range p.nl.Cells() {
		if isIOB(c) {
			if c.GetPort(PortI) == nil && c.Type != TypeIBuf {
				Log(LOG_ERR, "I/O buffer cell %s is missing its I port", c.Name)
			}
		}
	}
}
