package ecp5pack

import (
	"github.com/aoeldemann/ecp5pack/devdb"
	"github.com/aoeldemann/ecp5pack/telemetry"
)

// Packer bundles the scratch state shared across stages: the LUT/FF pairing
// maps built by stageFindLUTFFPairs and consumed by stagePairLUTs and
// stagePackRemainingSliceLogic, the per-slice FF tally, and the edge-clock
// bookkeeping recorded by stageRouteEdgeClocks. Per
// §9, none of this lives on Netlist itself: it is working state for a
// single Pack() call, not part of the netlist's own data model.
type Packer struct {
	nl  *Netlist
	db  devdb.Database
	cfg Config

	// lutffPairs/fflutPairs record LUT(or mux)->FF and FF->LUT(or mux)
	// pairings found by findLUTFFPairs (stage 13), keyed by cell name.
	lutffPairs map[IdString]IdString
	fflutPairs map[IdString]IdString

	// lutPairs records LUT-LUT pairings found by stagePairLUTs.
	lutPairs map[IdString]IdString

	// sliceUsage counts the FFs attachFFToSlice has placed into each SLICE,
	// keyed by slice name. The dense-packing decision (§4.2.6,
	// Config.DensePackThreshold) does not read it; it counts SLICE cells
	// with countSlices.
	sliceUsage map[IdString]int

	// eclkBels records which bel an edge-clock network has been locked onto
	// for a given clock net, written by stageRouteEdgeClocks (eclk.go); no
	// later stage reads it.
	eclkBels map[IdString]devdb.BelId

	// Telemetry, if non-nil, receives one Event per completed stage. Left
	// nil by NewPacker; PackWithTelemetry sets it from its tel argument.
	Telemetry *telemetry.Publisher
}

// NewPacker constructs a Packer bound to a netlist, a device database, and
// a tunable configuration.
func NewPacker(nl *Netlist, db devdb.Database, cfg Config) *Packer {
	return &Packer{
		nl:         nl,
		db:         db,
		cfg:        cfg,
		lutffPairs: make(map[IdString]IdString),
		fflutPairs: make(map[IdString]IdString),
		lutPairs:   make(map[IdString]IdString),
		sliceUsage: make(map[IdString]int),
		eclkBels:   make(map[IdString]devdb.BelId),
	}
}

// stage is one of the 19 ordered passes of Pack, named for diagnostics and
// for the progress events telemetry.Publisher emits.
type stage struct {
	name string
	run  func()
}

// stages lists the pipeline in the fixed order mandated by §2: each pass
// sees the fully-flushed result of every earlier one, and flushes its own
// staged mutations before the next pass begins.
func (p *Packer) stages() []stage {
	return []stage{
		{"prepack", p.stagePrepack},
		{"pack_io", p.stagePackIO},
		{"pack_dqs", p.stagePackDQS},
		{"preplace_plls", p.stagePreplacePLLs},
		{"pack_iologic", p.stagePackIOLogic},
		{"route_eclks", p.stageRouteEdgeClocks},
		{"pack_bram", p.stagePackBRAM},
		{"pack_dsp", p.stagePackDSP},
		{"pack_dcu", p.stagePackDCU},
		{"pack_misc", p.stageMisc},
		{"pack_constants", p.stagePackConstants},
		{"pack_dpram", p.stagePackDPRAM},
		{"pack_carries", p.stagePackCarries},
		{"find_lutff_pairs", p.stageFindLUTFFPairs},
		{"expand_lutmux", p.stageExpandLUTMux},
		{"pair_luts", p.stagePairLUTs},
		{"pack_remaining_slice_logic", p.stagePackRemainingSliceLogic},
		{"propagate_clock_constraints", p.stagePropagateClockConstraints},
		{"promote_globals", p.stagePromoteGlobals},
	}
}

// Progress is the event Pack reports to an optional progress callback (and,
// when telemetry is enabled, published over the telemetry socket) after
// each stage completes.
type Progress struct {
	Stage   string
	Index   int
	Total   int
	NCells  int
	NNets   int
}

// Pack runs the full 19-stage (plus the initial usage report) pipeline
// against nl, using db to resolve device-specific placement questions. It
// returns every non-fatal Diagnostic logged during the run; a Fatal
// diagnostic is instead returned as a non-nil error, in which case nl is
// left in a partially-packed state and should be discarded.
//
// onProgress, if non-nil, is invoked after each stage's Flush.
func Pack(nl *Netlist, db devdb.Database, cfg Config, onProgress func(Progress)) (diags []Diagnostic, err error) {
	return PackWithTelemetry(nl, db, cfg, onProgress, nil)
}

// PackWithTelemetry is Pack plus an optional telemetry.Publisher: every
// stage's Progress is also broadcast as a telemetry.Event, for a caller
// running ecp5pack with the -telemetry flag (see cmd/ecp5pack).
func PackWithTelemetry(nl *Netlist, db devdb.Database, cfg Config, onProgress func(Progress), tel *telemetry.Publisher) (diags []Diagnostic, err error) {
	beginDiagnostics()
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*PackError); ok {
				err = pe
				diags = Diagnostics()
				return
			}
			panic(r)
		}
	}()

	p := NewPacker(nl, db, cfg)
	p.Telemetry = tel
	reportLogicUsage(nl, db)

	stages := p.stages()
	for i, st := range stages {
		setStage(st.name)
		st.run()
		nl.Flush()
		progress := Progress{
			Stage:  st.name,
			Index:  i + 1,
			Total:  len(stages),
			NCells: len(nl.Cells()),
			NNets:  len(nl.Nets()),
		}
		if onProgress != nil {
			onProgress(progress)
		}
		if p.Telemetry != nil {
			p.Telemetry.Publish(telemetry.Event{
				Stage:   progress.Stage,
				EvtName: "stage_completed",
				Index:   progress.Index,
				Total:   progress.Total,
				NCells:  progress.NCells,
				NNets:   progress.NNets,
			})
		}
	}
	setStage("")
	return Diagnostics(), nil
}
