package ecp5pack

import "testing"

// TestRewriteInitBitRoundTrip checks §8 property 6: evaluating the
// rewritten init for any 4-input assignment must equal evaluating the
// original init with the forced bit clamped to v.
func TestRewriteInitBitRoundTrip(t *testing.T) {
	const bits = 4
	inits := []uint64{0x0000, 0xAAAA, 0xCCCC, 0xFFFF, 0x1248}
	for _, init := range inits {
		for index := 0; index < bits; index++ {
			for v := 0; v <= 1; v++ {
				got := rewriteInitBit(init, bits, index, v)
				for m := 0; m < 1<<bits; m++ {
					forced := m
					if v == 0 {
						forced = m &^ (1 << uint(index))
					} else {
						forced = m | (1 << uint(index))
					}
					want := (init >> uint(forced)) & 1
					have := (got >> uint(m)) & 1
					if want != have {
						t.Fatalf("init=%#x index=%d v=%d m=%d: want bit %d, got %d", init, index, v, m, want, have)
					}
				}
			}
		}
	}
}

// TestPackConstantsFoldsLUTInput is §8 scenario 3: LUT4(INIT=0xAAAA, A=VCC)
// folds to INIT=0xFFFF (every minterm takes the A=1 value, which is 1 in
// 0xAAAA) with A disconnected and the VCC cell removed.
func TestPackConstantsFoldsLUTInput(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "lut0")
	lut.Params["INIT"] = IntProp(0xAAAA, 16)
	vcc := nl.CreateCell(TypeVCC, "vcc0")
	nl.CreateNet("vcc_net")
	nl.ConnectPort(vcc.Name, PortZ, "vcc_net")
	nl.ConnectPort(lut.Name, PortA, "vcc_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if lut.PortNet(PortA) != "" {
		t.Fatalf("expected A disconnected after fold")
	}
	got := uint64(lut.Params["INIT"].Int)
	if got != 0xFFFF {
		t.Fatalf("expected INIT=0xFFFF, got %#x", got)
	}
	if _, ok := nl.GetCell("vcc0"); ok {
		t.Fatalf("VCC cell should have been removed")
	}
}

// TestPackConstantsLSRTiedHighStaysAsserted is a regression test: an FF
// whose LSR is driven by VCC with LSRMUX=LSR must keep a real tie-high
// connection (reset permanently asserted), not just be disconnected, which
// would silently flip it to a floating/default-low LSR.
func TestPackConstantsLSRTiedHighStaysAsserted(t *testing.T) {
	nl := NewNetlist()
	ff := nl.CreateCell(TypeTrellisFF, "ff0")
	ff.Params["LSRMUX"] = StringProp("LSR")
	vcc := nl.CreateCell(TypeVCC, "vcc0")
	nl.CreateNet("vcc_net")
	nl.ConnectPort(vcc.Name, PortZ, "vcc_net")
	nl.ConnectPort(ff.Name, PortLSR, "vcc_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if ff.PortNet(PortLSR) == "" {
		t.Fatalf("expected LSR to stay tied high, got disconnected")
	}
}

// TestPackConstantsLSRTiedLowDisconnects checks the 0-input side of the
// same rule still just disconnects, with no parameter change.
func TestPackConstantsLSRTiedLowDisconnects(t *testing.T) {
	nl := NewNetlist()
	ff := nl.CreateCell(TypeTrellisFF, "ff0")
	ff.Params["LSRMUX"] = StringProp("LSR")
	gnd := nl.CreateCell(TypeGND, "gnd0")
	nl.CreateNet("gnd_net")
	nl.ConnectPort(gnd.Name, PortZ, "gnd_net")
	nl.ConnectPort(ff.Name, PortLSR, "gnd_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if ff.PortNet(PortLSR) != "" {
		t.Fatalf("expected LSR to stay disconnected, got %q", ff.PortNet(PortLSR))
	}
}

// TestFoldCarryPortAHighJustDisconnects is a regression test: a CCU2C A0
// tied high must only disconnect (the pin ties high automatically), never
// fold into INIT0.
func TestFoldCarryPortAHighJustDisconnects(t *testing.T) {
	nl := NewNetlist()
	cc := nl.CreateCell(TypeCCU2C, "cc0")
	cc.Params["INIT0"] = IntProp(0x1234, 16)
	vcc := nl.CreateCell(TypeVCC, "vcc0")
	nl.CreateNet("vcc_net")
	nl.ConnectPort(vcc.Name, PortZ, "vcc_net")
	nl.ConnectPort(cc.Name, "A0", "vcc_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if cc.PortNet("A0") != "" {
		t.Fatalf("expected A0 disconnected")
	}
	if got := uint64(cc.Params["INIT0"].Int); got != 0x1234 {
		t.Fatalf("INIT0 should be untouched by a 1-input fold, got %#x", got)
	}
}

// TestFoldCarryPortDFoldsWhenPartnerTiedHigh checks the partner-tied-high
// case: D0 tied to GND folds into INIT0 because its partner C0 is left
// unconnected (tied high by default).
func TestFoldCarryPortDFoldsWhenPartnerTiedHigh(t *testing.T) {
	nl := NewNetlist()
	cc := nl.CreateCell(TypeCCU2C, "cc0")
	cc.Params["INIT0"] = IntProp(0xAAAA, 16)
	gnd := nl.CreateCell(TypeGND, "gnd0")
	nl.CreateNet("gnd_net")
	nl.ConnectPort(gnd.Name, PortZ, "gnd_net")
	nl.ConnectPort(cc.Name, "D0", "gnd_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if cc.PortNet("D0") != "" {
		t.Fatalf("expected D0 disconnected after folding")
	}
	want := rewriteInitBit(0xAAAA, 4, 3, 0)
	if got := uint64(cc.Params["INIT0"].Int); got != want {
		t.Fatalf("INIT0 = %#x, want %#x", got, want)
	}
}

// TestFoldCarryPortDTiesLowWhenPartnerNotTiedHigh checks the opposite case:
// D0 tied to GND, with its partner C0 wired to a real live net (not tied
// high), must attach the real tie-low net instead of folding into INIT0.
func TestFoldCarryPortDTiesLowWhenPartnerNotTiedHigh(t *testing.T) {
	nl := NewNetlist()
	cc := nl.CreateCell(TypeCCU2C, "cc0")
	cc.Params["INIT0"] = IntProp(0xAAAA, 16)
	other := nl.CreateCell(TypeLUT4, "other0")
	gnd := nl.CreateCell(TypeGND, "gnd0")
	nl.CreateNet("gnd_net")
	nl.CreateNet("c0_net")
	nl.ConnectPort(gnd.Name, PortZ, "gnd_net")
	nl.ConnectPort(other.Name, PortZ, "c0_net")
	nl.ConnectPort(cc.Name, "C0", "c0_net")
	nl.ConnectPort(cc.Name, "D0", "gnd_net")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePackConstants()
	nl.Flush()

	if cc.PortNet("D0") != packerGNDNet {
		t.Fatalf("expected D0 tied to shared GND net, got %q", cc.PortNet("D0"))
	}
	if got := uint64(cc.Params["INIT0"].Int); got != 0xAAAA {
		t.Fatalf("INIT0 should be untouched when partner isn't tied high, got %#x", got)
	}
}

// TestIsDSPControlPortRecognizesBroadPrefixFamily is a regression test for
// the broadened DSP control-port classification: a CE-prefixed port must
// count as a control port, not fall through to the <port>MUX data path.
func TestIsDSPControlPortRecognizesBroadPrefixFamily(t *testing.T) {
	for _, p := range []IdString{"CE0", "RSTA", "SROA", "SRIA", "ROA", "MAA", "MBB", "CFB0", "CIN0", "SOURCEA", "SIGNEDA", "OP0", "CLK0"} {
		if !isDSPControlPort(p) {
			t.Fatalf("expected %q to be a DSP control port", p)
		}
	}
	if isDSPControlPort("A0") {
		t.Fatalf("expected A0 to NOT be a DSP control port")
	}
}
