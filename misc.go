package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// stageMisc binds the handful of singleton hard cells every ECP5 device
// carries exactly one site for: USRMCLK (the configuration-port clock
// driver) and GSR (the global set/reset buffer), per §2 stage 9. Neither
// accepts a LOC; each is bound to its one fixed bel directly, and a design
// instantiating more than one of either is a fatal error since the device
// has nowhere to put a second instance.
func (p *Packer) stageMisc() {
	Log(LOG_INFO, "Binding USRMCLK/GSR...")
	p.bindSingleton(TypeUSRMCLK, "USRMCLK")
	p.bindSingleton(TypeGSR, "GSR")
}

// bindSingleton locates the one bel of the given name and assigns it to
// the sole cell of typ, if any; more than one such cell is fatal.
func (p *Packer) bindSingleton(typ IdString, belName string) {
	var found *Cell
	for _, c := range p.nl.Cells() {
		if c.Type != typ {
			continue
		}
		if found != nil {
			Log(LOG_ERR, "design instantiates more than one %s", typ)
			return
		}
		found = c
	}
	if found == nil {
		return
	}
	var bel devdb.BelId
	var ok bool
	for _, b := range p.db.BelsOfKind(devdb.BelGlobal) {
		if b.Name == belName {
			bel = b
			ok = true
			break
		}
	}
	if !ok {
		Log(LOG_ERR, "device has no %s site", belName)
		return
	}
	found.Bel = bel
	Log(LOG_INFO, "%s bound to %s", typ, bel)
}
