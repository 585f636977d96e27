// Description:
//
// Thin command-line front end for the packer. With no synthesis front end
// wired in, --demo runs the pipeline against a synthetic netlist generated
// by utils.GenLUTFFChain/GenCarryChain/GenPFUMXTree over a devdb.Fixture
// device, which is enough to exercise every stage end to end.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aoeldemann/ecp5pack"
	"github.com/aoeldemann/ecp5pack/devdb"
	"github.com/aoeldemann/ecp5pack/telemetry"
	"github.com/aoeldemann/ecp5pack/utils"
)

func main() {
	demo := flag.Bool("demo", false, "pack a synthetic demo netlist instead of reading one")
	verbose := flag.Bool("v", false, "enable debug logging")
	telemetryEndpoint := flag.String("telemetry", "", "ZMQ PUB endpoint to broadcast stage progress on, e.g. tcp://*:5556")
	width := flag.Int("width", 20, "synthetic device width, in demo mode")
	height := flag.Int("height", 20, "synthetic device height, in demo mode")
	flag.Parse()

	if *verbose {
		ecp5pack.LogSetLevel(ecp5pack.LOG_DEBUG)
	}

	if !*demo {
		fmt.Fprintln(os.Stderr, "ecp5pack: no synthesis front end is wired in; pass --demo to pack a synthetic netlist")
		os.Exit(1)
	}

	nl := ecp5pack.NewNetlist()
	utils.GenLUTFFChain(nl, 8)
	utils.GenCarryChain(nl, 6)
	utils.GenPFUMXTree(nl, "mux0")

	db := devdb.NewFixture(*width, *height)

	var tel *telemetry.Publisher
	if *telemetryEndpoint != "" {
		p, err := telemetry.NewPublisher(*telemetryEndpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ecp5pack: %v\n", err)
			os.Exit(1)
		}
		defer p.Close()
		tel = p
	}

	diags, err := ecp5pack.PackWithTelemetry(nl, db, ecp5pack.DefaultConfig(), func(pr ecp5pack.Progress) {
		fmt.Printf("[%d/%d] %-28s cells=%d nets=%d\n", pr.Index, pr.Total, pr.Stage, pr.NCells, pr.NNets)
	}, tel)

	for _, d := range diags {
		fmt.Printf("%s: %s: %s\n", d.Stage, severityName(d.Severity), d.Message)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ecp5pack: pack failed: %v\n", err)
		os.Exit(1)
	}

	report := utils.CalcUtilization(nl)
	fmt.Printf("slices=%d brams=%d dsps=%d iologics=%d plls=%d total_cells=%d\n",
		report.Slices, report.BRAMs, report.DSPs, report.IOLogics, report.PLLs, report.TotalCells)
}

func severityName(sev int) string {
	switch sev {
	case ecp5pack.LOG_ERR:
		return "error"
	case ecp5pack.LOG_WARN:
		return "warning"
	case ecp5pack.LOG_DEBUG:
		return "debug"
	default:
		return "info"
	}
}
