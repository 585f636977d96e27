// Description:
//
// Implements a post-pack utilisation report, summarising SLICE/BRAM/DSP/
// IOLOGIC/PLL cell counts, for a caller that wants a final numeric summary
// rather than the packer's pre-pack LUT/FF usage log (stats.go).

package utils

import "github.com/aoeldemann/ecp5pack"

// UtilizationReport is the post-pack cell-count summary for one netlist.
type UtilizationReport struct {
	Slices      int
	BRAMs       int
	DSPs        int
	IOLogics    int
	PLLs        int
	TotalCells  int
}

// CalcUtilization walks a packed netlist and tallies cell counts by
// category. It is meaningful only after Pack has run, once LUT4s, DPRAM16s
// and the other cells packing absorbs have been folded into SLICEs. Every
// cell belongs to at most one of these buckets; cells of any other type are
// counted only in TotalCells.
func CalcUtilization(nl *ecp5pack.Netlist) UtilizationReport {
	var r UtilizationReport
	for _, c := range nl.Cells() {
		r.TotalCells++
		switch c.Type {
		case ecp5pack.TypeSlice:
			r.Slices++
		case ecp5pack.TypeDP16KD:
			r.BRAMs++
		case ecp5pack.TypeMULT18X18D, ecp5pack.TypeALU54B:
			r.DSPs++
		case ecp5pack.TypeIOLOGIC, ecp5pack.TypeSIOLOGIC:
			r.IOLogics++
		case ecp5pack.TypeEHXPLLL:
			r.PLLs++
		}
	}
	return r
}
