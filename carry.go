package ecp5pack

// carryChain is one maximal chain of CCU2C cells linked COUT→CIN, found
// before any splitting or feed-in/feed-out synthesis.
type carryChain struct {
	cells []*Cell
}

// findCarryChains discovers every maximal carry chain: a chain starts at a
// cell whose CIN is not the COUT of another carry cell, and extends
// greedily along COUT→CIN links as long as the COUT net has exactly one
// user (§4.3).
func (p *Packer) findCarryChains() []carryChain {
	starts := map[IdString]bool{}

	for _, c := range p.nl.Cells() {
		if !isCarry(c) {
			continue
		}
		cinNet := c.PortNet(PortCIN)
		if cinNet == "" {
			starts[c.Name] = true
			continue
		}
		n, ok := p.nl.GetNet(cinNet)
		if !ok || n.Driver.IsZero() {
			starts[c.Name] = true
			continue
		}
		drv, ok := p.nl.GetCell(n.Driver.Cell)
		if !ok || !isCarry(drv) || n.Driver.Port != PortCOUT {
			starts[c.Name] = true
			continue
		}
	}

	var chains []carryChain
	for name := range starts {
		c, ok := p.nl.GetCell(name)
		if !ok {
			continue
		}
		chain := carryChain{cells: []*Cell{c}}
		cur := c
		for {
			coutNet := cur.PortNet(PortCOUT)
			if coutNet == "" {
				break
			}
			n, ok := p.nl.GetNet(coutNet)
			if !ok || n.UserCount() != 1 {
				break
			}
			u := n.liveUsersSnapshot()[0]
			if u.Port != PortCIN {
				break
			}
			next, ok := p.nl.GetCell(u.Cell)
			if !ok || !isCarry(next) {
				break
			}
			chain.cells = append(chain.cells, next)
			cur = next
		}
		chains = append(chains, chain)
	}
	return chains
}

// stagePackCarries finds every carry chain, splits chains exceeding the
// device's legal length with synthesized feed-out cells, prepends a
// feed-in cell where the chain's CIN comes from the fabric, and finally
// expands every logical carry cell into a SLICE with MODE=CCU2, stacking
// each sub-chain four to a tile as its own cluster (§4.3).
func (p *Packer) stagePackCarries() {
	Log(LOG_INFO, "Packing carries...")
	lMax := (p.db.Width()-4)*4 - 2
	if lMax < 1 {
		lMax = 1
	}

	for _, chain := range p.findCarryChains() {
		cells := chain.cells

		// Feed-in: the chain's CIN is a real fabric signal, not absent.
		first := cells[0]
		if first.PortNet(PortCIN) != "" {
			feedIn := p.nl.CreateCell(TypeCCU2C, p.nl.AutoName(string(first.Name)+"$feedin"))
			feedIn.Params["INIT0"] = IntProp(10, 4)
			feedIn.Params["INIT1"] = IntProp(0xFFFF, 16)
			feedIn.Params["INJECT1_0"] = StringProp("NO")
			feedIn.Params["INJECT1_1"] = StringProp("YES")
			fiNet := p.nl.AutoName("$carry_feedin")
			p.nl.CreateNet(fiNet)
			p.nl.ConnectPort(feedIn.Name, PortCOUT, fiNet)
			origCIN := first.PortNet(PortCIN)
			p.nl.ConnectPort(feedIn.Name, PortCIN, origCIN)
			p.nl.DisconnectPort(first.Name, PortCIN)
			p.nl.ConnectPort(first.Name, PortCIN, fiNet)
			cells = append([]*Cell{feedIn}, cells...)
		}

		// Split at lMax, inserting feed-out cells that loop the residual
		// carry back into the fabric. A length-driven split ends the
		// current sub-chain and starts a fresh one (its own cluster, §3:
		// each chain "fits within a single row"); a multi-user tap inserts
		// the same feed-out cell but the chain continues in the same
		// cluster, since the next chain-internal user stays wired to the
		// (now feed-out-driven) net.
		var subchains [][]*Cell
		var cur []*Cell
		for i, c := range cells {
			cur = append(cur, c)
			last := i == len(cells)-1
			overruns := len(cur) >= lMax
			coutNet := c.PortNet(PortCOUT)
			multiUser := false
			if coutNet != "" {
				if n, ok := p.nl.GetNet(coutNet); ok {
					multiUser = n.UserCount() > 1
				}
			}
			if !last && !overruns && !multiUser {
				continue
			}
			if !last || multiUser {
				feedOut := p.nl.CreateCell(TypeCCU2C, p.nl.AutoName(string(c.Name)+"$feedout"))
				feedOut.Params["INIT0"] = IntProp(0, 4)
				feedOut.Params["INIT1"] = IntProp(10, 4)
				feedOut.Params["INJECT1_0"] = StringProp("NO")
				feedOut.Params["INJECT1_1"] = StringProp("NO")
				if coutNet != "" {
					p.nl.MovePortTo(c.Name, PortCOUT, feedOut.Name, PortCOUT)
				}
				loopNet := p.nl.AutoName("$carry_loop")
				p.nl.CreateNet(loopNet)
				p.nl.ConnectPort(c.Name, PortCOUT, loopNet)
				p.nl.ConnectPort(feedOut.Name, PortCIN, loopNet)
				cur = append(cur, feedOut)
			}
			if overruns && !last {
				subchains = append(subchains, cur)
				cur = nil
			}
		}
		if len(cur) > 0 {
			subchains = append(subchains, cur)
		}

		for _, sc := range subchains {
			p.packCarryCluster(sc, lMax)
		}
	}
}

// packCarryCluster expands a (post-split) logical carry chain into
// MODE=CCU2 SLICEs, stacked four per tile as one cluster, then opportunistically
// adds to the cluster any FF exclusively driven by a cell's F0/F1 output
// whose M input is unconnected. No other FF compatibility is checked.
func (p *Packer) packCarryCluster(cells []*Cell, lMax int) {
	if len(cells) == 0 {
		return
	}
	root := cells[0]
	root.Cluster = root.Name
	root.ConstrX, root.ConstrY, root.ConstrZ = 0, 0, 0
	root.ConstrAbsZ = true
	root.Params["MODE"] = StringProp("CCU2")
	root.Children = nil

	for i, c := range cells {
		c.Params["MODE"] = StringProp("CCU2")
		if i == 0 {
			continue
		}
		c.Cluster = root.Name
		c.ConstrX = i / 4
		c.ConstrY = 0
		c.ConstrZ = i % 4
		c.ConstrAbsZ = true
		root.Children = append(root.Children, c.Name)
	}

	for _, c := range cells {
		for _, fport := range []IdString{"F0", "F1"} {
			netName := c.PortNet(fport)
			if netName == "" {
				continue
			}
			ff := netOnlyDrives(p.nl, netName, isFF, PortDI, false)
			if ff == nil || ff.PortNet(PortM) != "" {
				continue
			}
			ff.Cluster = root.Name
			ff.ConstrAbsZ = c.ConstrAbsZ
			ff.ConstrX, ff.ConstrY, ff.ConstrZ = c.ConstrX, c.ConstrY, c.ConstrZ
			root.Children = append(root.Children, ff.Name)
		}
	}
}
