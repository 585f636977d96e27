package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// Cell is a single netlist cell: an interned name and type, a set of named
// ports, parameter/attribute maps, and optional relative-placement
// constraints. This mirrors §3's data model directly.
type Cell struct {
	Name  IdString
	Type  IdString
	Ports map[IdString]*Port
	// Params are simulation/synthesis parameters (e.g. LUT4.INIT).
	Params map[IdString]Property
	// Attrs are placement/backend attributes (e.g. LOC, BEL, ECP5_IS_GLOBAL).
	Attrs map[IdString]Property

	// Cluster is the name of this cell's cluster root, or "" if this cell
	// is not part of a cluster. A root names itself.
	Cluster IdString
	// ConstrX/Y/Z and ConstrAbsZ give this cell's placement relative to (or,
	// if ConstrAbsZ, in absolute z terms within) the cluster root's tile.
	ConstrX, ConstrY, ConstrZ int
	ConstrAbsZ                bool
	// Children lists the cluster member names, in cluster order. Only
	// populated on a root; per §3 a child is never itself a root (clusters
	// are two levels deep at most).
	Children []IdString

	// Bel, if non-empty, is a hard placement constraint resolved from a LOC
	// attribute or assigned by a preplacement stage (PLL, DCU, DQS).
	Bel devdb.BelId
}

// Port is one named connection point on a cell.
type Port struct {
	Name IdString
	Dir  PortDirection
	Net  IdString // "" if unconnected
}

// ClockConstraint is the period/high/low timing budget attached to a net,
// per §3 and used by clock-constraint propagation (§4.5).
type ClockConstraint struct {
	Set    bool
	Period float64 // ns
	High   float64 // ns, high-phase budget
	Low    float64 // ns, low-phase budget
	// UserSet records whether this constraint came from the user (as opposed
	// to being derived by propagation); user constraints win ties per §4.5.
	UserSet bool
}

// Net is a single netlist net: an interned name, a single driver, and an
// ordered (index-stable) list of users.
type Net struct {
	Name   IdString
	Driver PortRef
	// Users holds one entry per connection; a removed user is represented by
	// a zero-valued PortRef at its original index rather than being spliced
	// out, since other PortRefs elsewhere in the netlist reference users by
	// that stable index (§3's invariant on user-index stability).
	Users []PortRef
	Clock ClockConstraint
	Attrs map[IdString]Property
}

// liveUsers returns user indices that have not been removed.
func (n *Net) liveUsers() []int {
	var idx []int
	for i, u := range n.Users {
		if !u.IsZero() {
			idx = append(idx, i)
		}
	}
	return idx
}

// UserCount returns the number of live (non-removed) users, i.e. the net's
// fanout as used throughout §4.2's pairing heuristics.
func (n *Net) UserCount() int {
	return len(n.liveUsers())
}

// liveUsersSnapshot returns the PortRef of every live (non-removed) user,
// in index order.
func (n *Net) liveUsersSnapshot() []PortRef {
	var refs []PortRef
	for _, i := range n.liveUsers() {
		refs = append(refs, n.Users[i])
	}
	return refs
}

// Netlist is the mutable cells/nets container every packer stage operates
// over. Mutation follows the lifecycle in §3: new cells and deletions are
// staged, then applied atomically by Flush, so no stage's iteration ever
// observes a half-applied mutation.
type Netlist struct {
	cells map[IdString]*Cell
	nets  map[IdString]*Net

	newCells   map[IdString]*Cell
	packedCells map[IdString]bool

	newNets   map[IdString]*Net
	erasedNets map[IdString]bool

	autoIdx int
}

// NewNetlist returns an empty netlist.
func NewNetlist() *Netlist {
	return &Netlist{
		cells:       make(map[IdString]*Cell),
		nets:        make(map[IdString]*Net),
		newCells:    make(map[IdString]*Cell),
		packedCells: make(map[IdString]bool),
		newNets:     make(map[IdString]*Net),
		erasedNets:  make(map[IdString]bool),
	}
}

// Cells returns the live cell map. Callers must not mutate the returned map
// directly; use the mutation API below so that staged deletions are
// respected by concurrent iteration within a stage.
func (nl *Netlist) Cells() map[IdString]*Cell { return nl.cells }

// Nets returns the live net map, with the same caveat as Cells.
func (nl *Netlist) Nets() map[IdString]*Net { return nl.nets }

// GetCell looks up a cell, including ones staged in the current stage's
// "new cells" queue but not yet flushed, and excluding ones already staged
// for deletion.
func (nl *Netlist) GetCell(name IdString) (*Cell, bool) {
	if nl.packedCells[name] {
		return nil, false
	}
	if c, ok := nl.newCells[name]; ok {
		return c, true
	}
	c, ok := nl.cells[name]
	return c, ok
}

// GetNet looks up a net by the same rules as GetCell.
func (nl *Netlist) GetNet(name IdString) (*Net, bool) {
	if name == "" {
		return nil, false
	}
	if nl.erasedNets[name] {
		return nil, false
	}
	if n, ok := nl.newNets[name]; ok {
		return n, true
	}
	n, ok := nl.nets[name]
	return n, ok
}

// CreateNet creates (and stages, pending Flush) a new, driverless net.
func (nl *Netlist) CreateNet(name IdString) *Net {
	n := &Net{Name: name, Attrs: make(map[IdString]Property)}
	nl.newNets[name] = n
	delete(nl.erasedNets, name)
	return n
}

// EraseNet stages a net for removal.
func (nl *Netlist) EraseNet(name IdString) {
	delete(nl.newNets, name)
	nl.erasedNets[name] = true
}

// CreateCell instantiates a cell of the given type using the port/parameter
// template registered for that type (see celltypes.go, the Go stand-in for
// the external "cells" library named in §6), assigns it the given name, and
// stages it for insertion at the next Flush.
func (nl *Netlist) CreateCell(typ, name IdString) *Cell {
	c := &Cell{
		Name:   name,
		Type:   typ,
		Ports:  make(map[IdString]*Port),
		Params: make(map[IdString]Property),
		Attrs:  make(map[IdString]Property),
	}
	applyCellTemplate(c)
	nl.newCells[name] = c
	delete(nl.packedCells, name)
	return c
}

// AddCell stages an already-constructed cell (used when loading an input
// netlist). It does not apply a type template.
func (nl *Netlist) AddCell(c *Cell) {
	nl.newCells[c.Name] = c
	delete(nl.packedCells, c.Name)
}

// EraseCell stages a cell for removal at the next Flush.
func (nl *Netlist) EraseCell(name IdString) {
	nl.packedCells[name] = true
}

// AutoName returns a fresh, never-before-used identifier with the given
// prefix, for synthesized cells/nets such as carry feed-in/out cells or
// edge-clock buffers.
func (nl *Netlist) AutoName(prefix string) IdString {
	for {
		nl.autoIdx++
		name := IdString(prefix + "$" + itoa(nl.autoIdx))
		if _, ok := nl.cells[name]; ok {
			continue
		}
		if _, ok := nl.newCells[name]; ok {
			continue
		}
		if _, ok := nl.nets[name]; ok {
			continue
		}
		if _, ok := nl.newNets[name]; ok {
			continue
		}
		return name
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// GetPort returns a cell's port, or nil if the cell has no such port.
func (c *Cell) GetPort(port IdString) *Port {
	return c.Ports[port]
}

// PortNet returns the net connected to a cell's port, or "" if the cell has
// no such port or the port is unconnected.
func (c *Cell) PortNet(port IdString) IdString {
	p := c.Ports[port]
	if p == nil {
		return ""
	}
	return p.Net
}

// ParamOr returns a cell's parameter value as a string, or def if the
// parameter is unset. This is the Go equivalent of the original's
// str_or_default helper, used throughout §4.2's compatibility checks.
func (c *Cell) ParamOr(name IdString, def string) string {
	if v, ok := c.Params[name]; ok {
		return v.AsString()
	}
	return def
}

// AttrOr mirrors ParamOr for attributes.
func (c *Cell) AttrOr(name IdString, def string) string {
	if v, ok := c.Attrs[name]; ok {
		return v.AsString()
	}
	return def
}

// ConnectPort connects one of a cell's ports to a net, updating both sides
// and preserving the bidirectional consistency invariant of §3: the port's
// net field and the net's driver/users are always brought into agreement by
// the same call.
func (nl *Netlist) ConnectPort(cellName, portName, netName IdString) {
	c, ok := nl.GetCell(cellName)
	if !ok {
		panic("ConnectPort: unknown cell " + cellName)
	}
	p, ok := c.Ports[portName]
	if !ok {
		panic("ConnectPort: unknown port " + cellName + "." + portName)
	}
	if p.Net == netName {
		return
	}
	if p.Net != "" {
		nl.DisconnectPort(cellName, portName)
	}
	n, ok := nl.GetNet(netName)
	if !ok {
		panic("ConnectPort: unknown net " + netName)
	}
	p.Net = netName
	switch p.Dir {
	case PortOut, PortInOut:
		// A second driver simply overwrites the first, matching the original
		// packer's tolerance for reassignment mid-pass (e.g. feed-out
		// rewiring); synthesis is assumed to have ruled out real conflicts.
		n.Driver = PortRef{Cell: cellName, Port: portName, Index: -1}
		if p.Dir == PortInOut {
			idx := len(n.Users)
			n.Users = append(n.Users, PortRef{Cell: cellName, Port: portName, Index: idx})
		}
	case PortIn:
		idx := len(n.Users)
		n.Users = append(n.Users, PortRef{Cell: cellName, Port: portName, Index: idx})
	}
}

// DisconnectPort removes the connection (if any) from a cell's port to its
// net, tombstoning the corresponding driver/user slot.
func (nl *Netlist) DisconnectPort(cellName, portName IdString) {
	c, ok := nl.GetCell(cellName)
	if !ok {
		return
	}
	p, ok := c.Ports[portName]
	if !ok || p.Net == "" {
		return
	}
	n, ok := nl.GetNet(p.Net)
	if ok {
		if n.Driver.Cell == cellName && n.Driver.Port == portName {
			n.Driver = PortRef{}
		}
		for i, u := range n.Users {
			if u.Cell == cellName && u.Port == portName {
				n.Users[i] = PortRef{}
			}
		}
	}
	p.Net = ""
}

// MovePortTo moves a connection from one cell's port to a different cell's
// port of the same name convention, used heavily by IOLOGIC absorption
// (§4.4) where a primitive's data port becomes an IOLOGIC port.
func (nl *Netlist) MovePortTo(srcCell, srcPort, dstCell, dstPort IdString) {
	c, ok := nl.GetCell(srcCell)
	if !ok {
		return
	}
	p, ok := c.Ports[srcPort]
	if !ok || p.Net == "" {
		return
	}
	netName := p.Net
	dir := p.Dir
	nl.DisconnectPort(srcCell, srcPort)
	dst, ok := nl.GetCell(dstCell)
	if !ok {
		panic("MovePortTo: unknown destination cell " + dstCell)
	}
	if _, ok := dst.Ports[dstPort]; !ok {
		dst.Ports[dstPort] = &Port{Name: dstPort, Dir: dir}
	}
	nl.ConnectPort(dstCell, dstPort, netName)
}

// RenamePort renames a port in place, keeping its connection (if any).
func (c *Cell) RenamePort(oldName, newName IdString) {
	p, ok := c.Ports[oldName]
	if !ok {
		return
	}
	p.Name = newName
	delete(c.Ports, oldName)
	c.Ports[newName] = p
}

// Flush applies all staged deletions and insertions atomically: this is the
// single point, once per stage, where the netlist's view of the world
// changes. Until this call folds them into the permanent maps, cells/nets
// created mid-stage are visible only through GetCell/GetNet, and cells/nets
// erased mid-stage still appear in Cells/Nets.
func (nl *Netlist) Flush() {
	for name := range nl.packedCells {
		delete(nl.cells, name)
	}
	for name, c := range nl.newCells {
		nl.cells[name] = c
	}
	for name := range nl.erasedNets {
		delete(nl.nets, name)
	}
	for name, n := range nl.newNets {
		nl.nets[name] = n
	}
	nl.packedCells = make(map[IdString]bool)
	nl.newCells = make(map[IdString]*Cell)
	nl.erasedNets = make(map[IdString]bool)
	nl.newNets = make(map[IdString]*Net)
}
