package ecp5pack

import "github.com/aoeldemann/ecp5pack/devdb"

// reportLogicUsage logs the pre-packing logic utilization summary that
// print_logic_usage produces in the original: how many LUT4-equivalent
// slots (plain logic, carry, and RAM-mode) and flip-flops the input
// netlist occupies against the device's available SLICE count.
func reportLogicUsage(nl *Netlist, db devdb.Database) {
	availSlices := len(db.BelsOfKind(devdb.BelSlice))
	totalLUTs := availSlices * 2
	totalFFs := availSlices * 2

	var usedLogicLUTs, usedCarryLUTs, usedRAMLUTs, usedFFs int
	for _, c := range nl.Cells() {
		switch {
		case isLUT(c):
			usedLogicLUTs++
		case isCarry(c):
			usedCarryLUTs += 2
		case isDPRAM(c):
			usedRAMLUTs += 4
		}
		if isFF(c) {
			usedFFs++
		}
	}

	Log(LOG_INFO, "Logic utilisation before packing:")
	usedLUTs := usedLogicLUTs + usedCarryLUTs + usedRAMLUTs
	Log(LOG_INFO, "    Total LUT4s:    %5d/%5d", usedLUTs, totalLUTs)
	Log(LOG_INFO, "        logic LUTs: %5d/%5d", usedLogicLUTs, totalLUTs)
	Log(LOG_INFO, "        carry LUTs: %5d/%5d", usedCarryLUTs, totalLUTs)
	Log(LOG_INFO, "          RAM LUTs: %5d/%5d", usedRAMLUTs, totalLUTs)
	Log(LOG_INFO, "     Total DFFs:    %5d/%5d", usedFFs, totalFFs)
}
