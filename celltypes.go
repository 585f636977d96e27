package ecp5pack

// Cell and port type names. These are the interned strings the original
// packer dispatches on (ctx->id("LUT4") and friends); kept here as typed
// constants purely so the rest of the package reads like an enum switch
// while still tolerating primitive types this file doesn't know about (see
// DESIGN.md for the enum-vs-interned-string tradeoff discussion in §9).
const (
	TypeLUT4       IdString = "LUT4"
	TypePFUMX      IdString = "PFUMX"
	TypeL6MUX21    IdString = "L6MUX21"
	TypeDPRAM16    IdString = "DPRAM16"
	TypeCCU2C      IdString = "CCU2C"
	TypeTrellisFF  IdString = "TRELLIS_FF"
	TypeSlice      IdString = "TRELLIS_SLICE"
	TypeTrellisIO  IdString = "TRELLIS_IO"
	TypeIBuf       IdString = "$nextpnr_ibuf"
	TypeOBuf       IdString = "$nextpnr_obuf"
	TypeIOBuf      IdString = "$nextpnr_iobuf"
	TypeGND        IdString = "GND"
	TypeVCC        IdString = "VCC"
	TypeDQSBUFM    IdString = "DQSBUFM"
	TypeEHXPLLL    IdString = "EHXPLLL"
	TypeIOLOGIC    IdString = "IOLOGIC"
	TypeSIOLOGIC   IdString = "SIOLOGIC"
	TypeDELAYF     IdString = "DELAYF"
	TypeDELAYG     IdString = "DELAYG"
	TypeIDDRX1F    IdString = "IDDRX1F"
	TypeODDRX1F    IdString = "ODDRX1F"
	TypeIDDRX2F    IdString = "IDDRX2F"
	TypeODDRX2F    IdString = "ODDRX2F"
	TypeIDDR71B    IdString = "IDDR71B"
	TypeODDR71B    IdString = "ODDR71B"
	TypeOSHX2A     IdString = "OSHX2A"
	TypeODDRX2DQA  IdString = "ODDRX2DQA"
	TypeODDRX2DQSB IdString = "ODDRX2DQSB"
	TypeIDDRX2DQA  IdString = "IDDRX2DQA"
	TypeTSHX2DQA   IdString = "TSHX2DQA"
	TypeTSHX2DQSA  IdString = "TSHX2DQSA"
	TypeECLKBuf    IdString = "TRELLIS_ECLKBUF"
	TypeECLKBridge IdString = "ECLKBRIDGECS"
	TypeECLKSyncB  IdString = "ECLKSYNCB"
	TypeDCCA       IdString = "DCCA"
	TypeCLKDIVF    IdString = "CLKDIVF"
	TypeDDRDLLA    IdString = "DDRDLLA"
	TypeDDRDLL     IdString = "DDRDLL"
	TypeDP16KD     IdString = "DP16KD"
	TypeMULT18X18D IdString = "MULT18X18D"
	TypeALU54B     IdString = "ALU54B"
	TypeDCUA       IdString = "DCUA"
	TypeEXTREFB    IdString = "EXTREFB"
	TypePCSCLKDIV  IdString = "PCSCLKDIV"
	TypeUSRMCLK    IdString = "USRMCLK"
	TypeGSR        IdString = "GSR"
	TypeOSCG       IdString = "OSCG"
)

// Port name constants used across more than one file.
const (
	PortA    IdString = "A"
	PortB    IdString = "B"
	PortC    IdString = "C"
	PortD    IdString = "D"
	PortZ    IdString = "Z"
	PortDI   IdString = "DI"
	PortQ    IdString = "Q"
	PortM    IdString = "M"
	PortCLK  IdString = "CLK"
	PortCE   IdString = "CE"
	PortLSR  IdString = "LSR"
	PortCIN  IdString = "CIN"
	PortCOUT IdString = "COUT"
	PortI    IdString = "I"
	PortO    IdString = "O"
	PortT    IdString = "T"
)

type portTemplate struct {
	name IdString
	dir  PortDirection
}

// cellTemplates is the Go stand-in for the external "cells" library named in
// §6: given a cell type, it seeds the port-direction metadata a freshly
// created cell needs before any net gets connected. Only the port shapes
// this packer actually creates or consumes are modeled; an input netlist
// cell of a type not listed here keeps whatever ports its loader already
// attached (prepack.go validates that every connected port refers to an
// existing net).
var cellTemplates = map[IdString][]portTemplate{
	TypeLUT4: {
		{PortA, PortIn}, {PortB, PortIn}, {PortC, PortIn}, {PortD, PortIn}, {PortZ, PortOut},
	},
	TypePFUMX: {
		{"ALUT", PortIn}, {"BLUT", PortIn}, {"C0", PortIn}, {PortZ, PortOut},
	},
	TypeL6MUX21: {
		{"D0", PortIn}, {"D1", PortIn}, {"SD", PortIn}, {PortZ, PortOut},
	},
	TypeDPRAM16: {
		{"DI0", PortIn}, {"DI1", PortIn}, {"DI2", PortIn}, {"DI3", PortIn},
		{"WAD0", PortIn}, {"WAD1", PortIn}, {"WAD2", PortIn}, {"WAD3", PortIn},
		{"RAD0", PortIn}, {"RAD1", PortIn}, {"RAD2", PortIn}, {"RAD3", PortIn},
		{"WCK", PortIn}, {"WRE", PortIn},
		{"DO0", PortOut}, {"DO1", PortOut}, {"DO2", PortOut}, {"DO3", PortOut},
	},
	TypeCCU2C: {
		{"A0", PortIn}, {"B0", PortIn}, {"C0", PortIn}, {"D0", PortIn},
		{"A1", PortIn}, {"B1", PortIn}, {"C1", PortIn}, {"D1", PortIn},
		{PortCIN, PortIn}, {PortCOUT, PortOut},
		{"S0", PortOut}, {"S1", PortOut}, {"F0", PortOut}, {"F1", PortOut},
	},
	TypeTrellisFF: {
		{PortCLK, PortIn}, {PortCE, PortIn}, {PortLSR, PortIn},
		{PortDI, PortIn}, {PortM, PortIn}, {PortQ, PortOut},
	},
	TypeSlice: {
		{PortA + "0", PortIn}, {PortB + "0", PortIn}, {PortC + "0", PortIn}, {PortD + "0", PortIn},
		{PortA + "1", PortIn}, {PortB + "1", PortIn}, {PortC + "1", PortIn}, {PortD + "1", PortIn},
		{"F0", PortOut}, {"F1", PortOut}, {"FXA", PortIn}, {"FXB", PortIn},
		{"Q0", PortOut}, {"Q1", PortOut}, {"M0", PortIn}, {"M1", PortIn},
		{"OFX0", PortOut}, {"OFX1", PortOut},
		{PortCLK, PortIn}, {PortCE, PortIn}, {PortLSR, PortIn},
		{PortCIN, PortIn}, {PortCOUT, PortOut},
		{"WD0", PortIn}, {"WD1", PortIn}, {"WAD0", PortIn}, {"WAD1", PortIn},
		{"WAD2", PortIn}, {"WAD3", PortIn}, {"WRE", PortIn}, {"WCK", PortIn},
	},
	TypeTrellisIO: {
		{"B", PortInOut}, {"I", PortIn}, {"O", PortOut}, {"T", PortIn},
	},
	TypeGND: {{PortZ, PortOut}},
	TypeVCC: {{PortZ, PortOut}},
	TypeDQSBUFM: {
		{"DQSI", PortIn}, {"READ0", PortIn}, {"READ1", PortIn},
		{"DQSW", PortOut}, {"DQSW270", PortOut}, {"DQSR90", PortOut},
		{"RDPNTR0", PortOut}, {"RDPNTR1", PortOut}, {"RDPNTR2", PortOut},
		{"WRPNTR0", PortOut}, {"WRPNTR1", PortOut}, {"WRPNTR2", PortOut},
	},
	TypeEHXPLLL: {
		{"CLKI", PortIn}, {"CLKFB", PortIn},
		{"CLKOP", PortOut}, {"CLKOS", PortOut}, {"CLKOS2", PortOut}, {"CLKOS3", PortOut},
	},
	TypeECLKBuf: {
		{"ECLKI", PortIn}, {"ECLKO", PortOut},
	},
	TypeECLKBridge: {
		{"CLK0", PortIn}, {"CLK1", PortIn}, {"SEL", PortIn}, {"ECSOUT", PortOut},
	},
	TypeECLKSyncB: {
		{"ECLKI", PortIn}, {"STOP", PortIn}, {"ECLKO", PortOut},
	},
	TypeDCCA: {
		{"CLKI", PortIn}, {"CE", PortIn}, {"CLKO", PortOut},
	},
	TypeCLKDIVF: {
		{"CLKI", PortIn}, {"RST", PortIn}, {"CDIVX", PortOut},
	},
	TypeDDRDLLA: {
		{PortCLK, PortIn}, {"RST", PortIn}, {"UDDCNTLN", PortIn},
		{"DDRDEL", PortOut}, {"LOCK", PortOut},
	},
	TypeOSCG: {
		{"OSC", PortOut},
	},
	TypeDP16KD: {
		{"CLKA", PortIn}, {"CLKB", PortIn}, {"CEA", PortIn}, {"CEB", PortIn},
		{"OCEA", PortIn}, {"OCEB", PortIn}, {"WEA", PortIn}, {"WEB", PortIn},
		{"RSTA", PortIn}, {"RSTB", PortIn}, {"CSA0", PortIn}, {"CSA1", PortIn}, {"CSA2", PortIn},
		{"CSB0", PortIn}, {"CSB1", PortIn}, {"CSB2", PortIn},
	},
	TypeMULT18X18D: {
		{"CLK0", PortIn}, {"CLK1", PortIn}, {"CLK2", PortIn}, {"CLK3", PortIn},
	},
	TypeALU54B: {
		{"CLK0", PortIn}, {"CLK1", PortIn}, {"CLK2", PortIn}, {"CLK3", PortIn},
	},
}

// applyCellTemplate seeds a freshly created cell's ports from cellTemplates,
// if a template is registered for its type.
func applyCellTemplate(c *Cell) {
	tmpl, ok := cellTemplates[c.Type]
	if !ok {
		return
	}
	for _, pt := range tmpl {
		c.Ports[pt.name] = &Port{Name: pt.name, Dir: pt.dir}
	}
}

// ensurePort returns a cell's port, creating it with the given direction if
// it doesn't already exist. Used when moving ports onto a synthesized cell
// (e.g. an IOLOGIC) whose template doesn't name every possible source port.
func ensurePort(c *Cell, name IdString, dir PortDirection) *Port {
	if p, ok := c.Ports[name]; ok {
		return p
	}
	p := &Port{Name: name, Dir: dir}
	c.Ports[name] = p
	return p
}
