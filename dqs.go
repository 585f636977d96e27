package ecp5pack

// stagePackDQS binds each DQSBUFM cell to the IOLOGIC-adjacent bel next to
// its driving PIO, per §2 stage 3. A DQSBUFM not driven from a real PIO net
// (DQSI unconnected, or fed by something other than a pin) is left
// unplaced for a later placement pass to reject or accept according to
// device constraints this packer does not itself enforce.
func (p *Packer) stagePackDQS() {
	Log(LOG_INFO, "Placing DQS buffers...")
	for _, c := range p.nl.Cells() {
		if c.Type != TypeDQSBUFM {
			continue
		}
		dqsiNet := c.PortNet("DQSI")
		if dqsiNet == "" {
			continue
		}
		n, ok := p.nl.GetNet(dqsiNet)
		if !ok || n.Driver.IsZero() {
			continue
		}
		drv, ok := p.nl.GetCell(n.Driver.Cell)
		if !ok || !isTrellisIO(drv) || drv.Bel.IsEmpty() {
			continue
		}
		bel, ok := p.db.DQSGroup(drv.Bel)
		if !ok {
			Log(LOG_WARN, "DQSBUFM %s: no DQS bel found adjacent to PIO %s", c.Name, drv.Name)
			continue
		}
		c.Bel = bel
		Log(LOG_INFO, "DQSBUFM %s bound to bel %s", c.Name, bel)
	}
}
