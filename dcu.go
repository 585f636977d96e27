package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// stagePackDCU binds every DCUA/EXTREFB/PCSCLKDIV hard macro to the bel its
// LOC attribute names, per §2 stage 8. Unlike ordinary fabric cells these
// hard macros have exactly one legal bel each for a given channel, so
// binding is a direct lookup rather than a search; a cell with no LOC, or
// one naming a bel the device database doesn't recognize as the matching
// kind, is a fatal error since nothing downstream can legalize it.
func (p *Packer) stagePackDCU() {
	Log(LOG_INFO, "Binding DCU/EXTREFB/PCSCLKDIV hard macros...")
	for _, c := range p.nl.Cells() {
		var kind string
		switch c.Type {
		case TypeDCUA:
			kind = "DCU"
		case TypeEXTREFB:
			kind = "EXTREFB"
		case TypePCSCLKDIV:
			kind = "PCSCLKDIV"
		default:
			continue
		}

		loc, ok := c.Attrs["LOC"]
		if !ok || loc.AsString() == "" {
			Log(LOG_ERR, "%s cell %s has no LOC attribute to bind it to a %s site", c.Type, c.Name, kind)
			continue
		}
		bel, ok := p.db.PackagePinBel(loc.AsString())
		if !ok {
			Log(LOG_ERR, "%s cell %s names unknown site '%s'", c.Type, c.Name, loc.AsString())
			continue
		}
		if p.db.BelKind(bel) != devdb.BelDCU {
			Log(LOG_ERR, "%s cell %s names site '%s', which is not a %s site", c.Type, c.Name, loc.AsString(), kind)
			continue
		}
		c.Bel = bel
		Log(LOG_INFO, "%s %s bound to %s", kind, c.Name, bel)
	}

	p.checkDCUChannelAgreement()
}

// checkDCUChannelAgreement requires that an EXTREFB driving a bound DCUA's
// CH0_REFCLK input is itself bound to a site. PCSCLKDIV cells are not
// examined.
func (p *Packer) checkDCUChannelAgreement() {
	for _, c := range p.nl.Cells() {
		if c.Type != TypeDCUA || c.Bel.IsEmpty() {
			continue
		}
		refNet := c.PortNet("CH0_REFCLK")
		if refNet == "" {
			continue
		}
		n, ok := p.nl.GetNet(refNet)
		if !ok || n.Driver.IsZero() {
			continue
		}
		drv, ok := p.nl.GetCell(n.Driver.Cell)
		if !ok || drv.Type != TypeEXTREFB {
			continue
		}
		if drv.Bel.IsEmpty() {
			Log(LOG_ERR, "EXTREFB %s feeding DCUA %s has no bound site", drv.Name, c.Name)
		}
	}
}
