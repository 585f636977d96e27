package ecp5pack

import "fmt"

// IdString is an interned-style identifier. The original packer dispatches
// on interned strings handed out by a global string table; this
// reimplementation keeps the same interned-string model (useful for
// forwards-compatibility with primitive types the packer doesn't yet know
// about, see DESIGN.md) but drops the interning table itself, since Go
// string comparison and map lookups are already cheap enough for a batch
// tool operating on tens of thousands of cells.
type IdString string

// PortDirection is the direction tag every cell port carries.
type PortDirection int

const (
	PortIn PortDirection = iota
	PortOut
	PortInOut
)

// PortRef names one endpoint of a net connection: a cell, one of its ports,
// and (for a user, never for a driver) the stable index of that connection
// within the net's user list. Per DESIGN.md, this replaces the raw
// CellInfo*/NetInfo* pointers of the original with identifiers that are
// always resolved back through the owning Netlist, so cells and nets can
// live in ordinary maps instead of an arena of pinned pointers.
type PortRef struct {
	Cell IdString
	Port IdString
	// Index is the position of this reference within the net's Users slice.
	// It is -1 for a driver reference, or when the reference does not (yet)
	// name a specific slot.
	Index int
}

func (p PortRef) IsZero() bool {
	return p.Cell == "" && p.Port == ""
}

func (p PortRef) String() string {
	return fmt.Sprintf("%s.%s", p.Cell, p.Port)
}

// Property is a tagged union of {string, integer-with-bit-width}, matching
// §3's data model. Bit width is preserved for bitmask parameters such as a
// LUT4's 16-bit INIT value, so that rewriting one bit of a mask never loses
// the width of the rest.
type Property struct {
	IsString bool
	Str      string
	Int      int64
	Bits     int
}

// StringProp creates a string-valued Property.
func StringProp(s string) Property {
	return Property{IsString: true, Str: s}
}

// IntProp creates an integer-valued Property with an explicit bit width.
func IntProp(v int64, bits int) Property {
	return Property{IsString: false, Int: v, Bits: bits}
}

// AsString renders a Property in the textual form cell parameters are
// commonly compared in (e.g. "0", "1", "CLK").
func (p Property) AsString() string {
	if p.IsString {
		return p.Str
	}
	return fmt.Sprintf("%d", p.Int)
}

// Equal compares two properties by value, not by representation: an integer
// Property and a string Property with the same textual form are equal. The
// original packer stores many of these as plain strings (parsed from
// Verilog parameter syntax) and compares them as such.
func (p Property) Equal(o Property) bool {
	return p.AsString() == o.AsString()
}
