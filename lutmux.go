package ecp5pack

// stageExpandLUTMux folds PFUMX (LUT5) and L6MUX21 (LUT6/LUT7) mux trees
// into SLICE clusters, per §4.2.4. LUT5 is handled first since LUT6 depends
// on two already-expanded LUT5 SLICEs' OFX0 outputs, and LUT7 in turn
// depends on two LUT6 clusters' OFX1 outputs; each sub-pass only looks at
// L6MUX21 cells whose D0/D1 inputs already have the expected driver shape,
// so running LUT5 -> LUT6 -> LUT7 in that fixed order is sufficient without
// a general fixed-point loop.
func (p *Packer) stageExpandLUTMux() {
	Log(LOG_INFO, "Packing LUT5-7s...")
	p.expandLUT5s()
	p.expandLUT6s()
	p.expandLUT7s()
}

// expandLUT5s folds each PFUMX plus its two driving LUT4s into one SLICE:
// the LUTs become LUT0/LUT1, the select becomes M0, and the mux output
// becomes OFX0.
func (p *Packer) expandLUT5s() {
	for _, mux := range p.nl.Cells() {
		if !isPFUMux(mux) {
			continue
		}
		aNet := mux.PortNet("ALUT")
		bNet := mux.PortNet("BLUT")
		selNet := mux.PortNet("C0")
		outNet := mux.PortNet("Z")

		lutA := p.soleLUTDriver(aNet)
		lutB := p.soleLUTDriver(bNet)
		if lutA == nil || lutB == nil {
			Log(LOG_ERR, "PFUMX %s does not have two LUT4s driving ALUT/BLUT", mux.Name)
			continue
		}

		slice := p.nl.CreateCell(TypeSlice, p.nl.AutoName(string(mux.Name)+"$slice"))
		slice.Params["MODE"] = StringProp("LOGIC")
		p.moveLUTInto(slice, lutA, 0)
		p.moveLUTInto(slice, lutB, 1)
		if selNet != "" {
			p.nl.ConnectPort(slice.Name, "M0", selNet)
		}
		if outNet != "" {
			p.nl.MovePortTo(mux.Name, PortZ, slice.Name, "OFX0")
		}

		p.packFFForOutput(slice, "OFX0")

		p.nl.EraseCell(mux.Name)
		p.nl.EraseCell(lutA.Name)
		p.nl.EraseCell(lutB.Name)
	}
}

// expandLUT6s folds an L6MUX21 whose D0/D1 are both driven by a SLICE's
// OFX0 output into a 2-slice cluster: the D1 slice becomes the root,
// holding FXA/FXB/M1/OFX1; the D0 slice is placed relative at z=1.
func (p *Packer) expandLUT6s() {
	for _, mux := range p.nl.Cells() {
		if !isL6Mux(mux) {
			continue
		}
		s0 := p.soleSliceDriver(mux.PortNet("D0"), "OFX0")
		s1 := p.soleSliceDriver(mux.PortNet("D1"), "OFX0")
		if s0 == nil || s1 == nil {
			continue // not yet a LUT6 shape; may be handled as a LUT7 input later
		}
		root := s1
		root.Cluster = root.Name
		root.ConstrX, root.ConstrY, root.ConstrZ = 0, 0, 0
		root.ConstrAbsZ = true
		s0.Cluster = root.Name
		s0.ConstrX, s0.ConstrY, s0.ConstrZ = 0, 0, 1
		s0.ConstrAbsZ = true
		root.Children = append(root.Children, s0.Name)

		p.nl.ConnectPort(root.Name, "FXA", s0.PortNet("OFX0"))
		if own := root.PortNet("OFX0"); own != "" {
			p.nl.ConnectPort(root.Name, "FXB", own)
		}
		root.Params["FXA_SRC"] = StringProp(string(s0.Name))
		if sel := mux.PortNet("SD"); sel != "" {
			p.nl.ConnectPort(root.Name, "M1", sel)
		}
		if mux.PortNet("Z") != "" {
			p.nl.MovePortTo(mux.Name, PortZ, root.Name, "OFX1")
		}
		p.packFFForOutput(root, "OFX1")
		p.nl.EraseCell(mux.Name)
	}
}

// expandLUT7s folds an L6MUX21 whose D0/D1 are both driven by a LUT6
// cluster's OFX1 output into a 4-slice cluster stacked z=0..3, root at z=3.
func (p *Packer) expandLUT7s() {
	for _, mux := range p.nl.Cells() {
		if !isL6Mux(mux) {
			continue
		}
		r0 := p.soleSliceDriver(mux.PortNet("D0"), "OFX1")
		r1 := p.soleSliceDriver(mux.PortNet("D1"), "OFX1")
		if r0 == nil || r1 == nil {
			Log(LOG_ERR, "L6MUX21 %s does not have the expected LUT6/LUT7 driver shape", mux.Name)
			continue
		}
		root := r1
		// root already carries one child from its own LUT6 expansion
		// (expandLUT6s); that child, plus r0 and r0's own LUT6 child, are
		// the other three slices of this 4-slice tile and all need fresh
		// z slots here (0,1,2), since root itself moves from z=0 to z=3.
		oldChildren := append([]IdString{}, root.Children...)
		root.Children = nil
		root.ConstrZ = 3
		root.ConstrAbsZ = true
		root.Cluster = root.Name

		children := append([]IdString{r0.Name}, r0.Children...)
		children = append(children, oldChildren...)
		z := 0
		for _, childName := range children {
			child, ok := p.nl.GetCell(childName)
			if !ok {
				continue
			}
			child.Cluster = root.Name
			child.ConstrX, child.ConstrY, child.ConstrZ = 0, 0, z
			child.ConstrAbsZ = true
			root.Children = append(root.Children, child.Name)
			z++
			if z == 3 {
				z++ // root itself occupies z=3
			}
		}
		if mux.PortNet("Z") != "" {
			p.nl.MovePortTo(mux.Name, PortZ, root.Name, "OFX1")
		}
		p.nl.EraseCell(mux.Name)
	}
}

// soleLUTDriver returns the LUT4 cell solely driving a net's Z output, or
// nil if the net is absent or not driven by exactly one LUT4.
func (p *Packer) soleLUTDriver(netName IdString) *Cell {
	if netName == "" {
		return nil
	}
	n, ok := p.nl.GetNet(netName)
	if !ok || n.Driver.IsZero() {
		return nil
	}
	c, ok := p.nl.GetCell(n.Driver.Cell)
	if !ok || !isLUT(c) || n.Driver.Port != PortZ {
		return nil
	}
	return c
}

// soleSliceDriver returns the SLICE cell solely driving a net from the
// given output port.
func (p *Packer) soleSliceDriver(netName IdString, port IdString) *Cell {
	if netName == "" {
		return nil
	}
	n, ok := p.nl.GetNet(netName)
	if !ok || n.Driver.IsZero() || n.Driver.Port != port {
		return nil
	}
	c, ok := p.nl.GetCell(n.Driver.Cell)
	if !ok || !isSlice(c) {
		return nil
	}
	return c
}

// moveLUTInto copies a LUT4's init mask and input connections into one of a
// SLICE's two logic-cell quarters (0 or 1).
func (p *Packer) moveLUTInto(slice *Cell, lut *Cell, quarter int) {
	initKey := IdString("LUT" + itoa(quarter) + "_INITVAL")
	slice.Params[initKey] = lut.Params["INIT"]
	for _, in := range []IdString{PortA, PortB, PortC, PortD} {
		netName := lut.PortNet(in)
		if netName == "" {
			continue
		}
		p.nl.ConnectPort(slice.Name, IdString(string(in)+itoa(quarter)), netName)
	}
}

// packFFForOutput opportunistically packs an FF exclusively driven by a
// slice's named output port into the cluster, provided the FF's M input is
// unconnected. No other FF compatibility is checked.
func (p *Packer) packFFForOutput(slice *Cell, port IdString) {
	netName := slice.PortNet(port)
	if netName == "" {
		return
	}
	ff := netOnlyDrives(p.nl, netName, isFF, PortDI, false)
	if ff == nil || ff.PortNet(PortM) != "" {
		return
	}
	root := slice
	if slice.Cluster != "" {
		if r, ok := p.nl.GetCell(slice.Cluster); ok {
			root = r
		}
	}
	ff.Cluster = root.Name
	ff.ConstrAbsZ = slice.ConstrAbsZ
	ff.ConstrX, ff.ConstrY, ff.ConstrZ = slice.ConstrX, slice.ConstrY, slice.ConstrZ
	root.Children = append(root.Children, ff.Name)
}
