// Package ecp5pack implements the technology-mapping and packing stage of a
// place-and-route flow targeting the Lattice ECP5 FPGA family. It consumes a
// generic, post-synthesis gate-level netlist (LUT4s, flip-flops, carry
// cells, distributed and block RAM, DSP primitives, I/O buffers, PLLs,
// DDR/IOLOGIC cells and global clock buffers) and rewrites it in place into a
// device-legal netlist whose cells correspond one-to-one with the physical
// tiles of the target device, emitting the relative-placement clusters that
// placement and routing require.
//
// The package never touches a live device: the device database is consumed
// through the read-only devdb.Database interface, and the netlist container
// is the Netlist type defined in this package. Callers supply both and
// receive back a mutated Netlist plus a list of non-fatal Diagnostics; a
// fatal condition is returned as an error and the input netlist should be
// discarded.
package ecp5pack
