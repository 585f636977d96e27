package ecp5pack

// stagePackDPRAM expands each DPRAM16 cell into a 3-SLICE cluster
// (DPRAM0, DPRAM1, RAMW) per §4.2.5. The write clock/reset are only ever
// wired through the RAMW slice; DPRAM0/DPRAM1 carry the read ports and
// half the data/write-address bits each. FFs driven by a slice's F-outputs
// are packed opportunistically by packFFForOutput, which checks only that
// the FF's M input is unconnected.
func (p *Packer) stagePackDPRAM() {
	Log(LOG_INFO, "Packing distributed RAMs...")
	for _, ci := range p.nl.Cells() {
		if !isDPRAM(ci) {
			continue
		}

		dpram0 := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(ci.Name)+"$dp0"))
		dpram1 := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(ci.Name)+"$dp1"))
		ramw := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(ci.Name)+"$ramw"))

		dpram0.Params["MODE"] = StringProp("DPRAM")
		dpram1.Params["MODE"] = StringProp("DPRAM")
		ramw.Params["MODE"] = StringProp("RAMW")

		dpram0.Cluster = dpram0.Name
		dpram0.ConstrAbsZ, dpram1.ConstrAbsZ, ramw.ConstrAbsZ = true, true, true
		dpram0.ConstrX, dpram0.ConstrY, dpram0.ConstrZ = 0, 0, 0
		dpram1.Cluster, dpram1.ConstrX, dpram1.ConstrY, dpram1.ConstrZ = dpram0.Name, 0, 0, 1
		ramw.Cluster, ramw.ConstrX, ramw.ConstrY, ramw.ConstrZ = dpram0.Name, 0, 0, 2
		dpram0.Children = []IdString{dpram1.Name, ramw.Name}

		for i, half := range []*Cell{dpram0, dpram1} {
			for q := 0; q < 2; q++ {
				for _, suffix := range []string{"0", "1", "2", "3"} {
					di := ci.PortNet(IdString("DI" + suffix))
					if di != "" && q == 0 {
						p.nl.ConnectPort(half.Name, IdString("WD"+itoa(i)), di)
					}
				}
			}
			for k, suffix := range []string{"0", "1", "2", "3"} {
				rad := ci.PortNet(IdString("RAD" + suffix))
				if rad != "" {
					p.nl.ConnectPort(half.Name, IdString("ABCD"[k:k+1]+itoa(i)), rad)
				}
				wad := ci.PortNet(IdString("WAD" + suffix))
				if wad != "" {
					p.nl.ConnectPort(half.Name, IdString("WAD"+suffix), wad)
				}
			}
			outNet := ci.PortNet(IdString("DO" + itoa(i)))
			if outNet != "" {
				p.nl.ConnectPort(half.Name, IdString("F"+itoa(i)), outNet)
				p.packFFForOutput(half, IdString("F"+itoa(i)))
			}
		}

		if wck := ci.PortNet("WCK"); wck != "" {
			p.nl.ConnectPort(ramw.Name, "WCK", wck)
		}
		if wre := ci.PortNet("WRE"); wre != "" {
			p.nl.ConnectPort(ramw.Name, "WRE", wre)
		}

		p.nl.EraseCell(ci.Name)
	}
}
