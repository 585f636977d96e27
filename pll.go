package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// stagePreplacePLLs assigns each EHXPLLL cell a PLL bel, preferring the
// bel closest to the bel already fixed for its CLKI source (an I/O pad or
// another preplaced hard macro), since a PLL's input clock route is
// fixed-function and not something later routing can route around a bad
// choice. If CLKI's source has no fixed bel yet, the first available PLL
// bel is used; Non-goals excludes this package from doing anything more
// sophisticated than that.
func (p *Packer) stagePreplacePLLs() {
	Log(LOG_INFO, "Preplacing PLLs...")
	plls := p.db.BelsOfKind(devdb.BelPLL)
	if len(plls) == 0 {
		return
	}
	used := map[devdb.BelId]bool{}

	for _, c := range p.nl.Cells() {
		if c.Type != TypeEHXPLLL {
			continue
		}
		if !c.Bel.IsEmpty() {
			used[c.Bel] = true
			continue
		}
		var srcBel devdb.BelId
		if clkiNet := c.PortNet("CLKI"); clkiNet != "" {
			if n, ok := p.nl.GetNet(clkiNet); ok && !n.Driver.IsZero() {
				if drv, ok := p.nl.GetCell(n.Driver.Cell); ok {
					srcBel = drv.Bel
				}
			}
		}

		best := devdb.BelId{}
		bestDist := -1
		for _, bel := range plls {
			if used[bel] {
				continue
			}
			if srcBel.IsEmpty() {
				best = bel
				break
			}
			d := manhattan(bel.Loc, srcBel.Loc)
			if bestDist == -1 || d < bestDist {
				best, bestDist = bel, d
			}
		}
		if best.IsEmpty() {
			Log(LOG_ERR, "no free PLL bel available for %s", c.Name)
			continue
		}
		c.Bel = best
		used[best] = true
		Log(LOG_INFO, "PLL %s preplaced at bel %s", c.Name, best)
	}
}

func manhattan(a, b devdb.Loc) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
