package ecp5pack

// stageFindLUTFFPairs implements §4.2.1: for each LUT/PFUMX/L6MUX21 cell,
// examine its Z output net and record a bidirectional pairing with the
// single FF it exclusively drives into DI, provided that FF has no M
// (preload) connection — a preload FF conflicts with a packed LUT on the
// shared M wire, so it cannot be paired.
func (p *Packer) stageFindLUTFFPairs() {
	Log(LOG_INFO, "Finding LUTFF pairs...")
	for _, ci := range p.nl.Cells() {
		if !isLUT(ci) && !isPFUMux(ci) && !isL6Mux(ci) {
			continue
		}
		znet := ci.PortNet(PortZ)
		if znet == "" {
			continue
		}
		ff := netOnlyDrives(p.nl, znet, isFF, PortDI, false)
		if ff == nil || ff.PortNet(PortM) != "" {
			continue
		}
		p.lutffPairs[ci.Name] = ff.Name
		p.fflutPairs[ff.Name] = ci.Name
	}
}
