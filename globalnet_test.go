package ecp5pack

import "testing"

// TestPromoteGlobalsPromotesHighFanoutClock is §8 scenario 5's promotion
// half: a net feeding enough CLK ports gets ECP5_IS_GLOBAL set.
func TestPromoteGlobalsPromotesHighFanoutClock(t *testing.T) {
	nl := NewNetlist()
	nl.CreateNet("clk")
	cfg := DefaultConfig()
	for i := 0; i < cfg.GlobalPromotionFanout; i++ {
		ff := nl.CreateCell(TypeTrellisFF, IdString(itoa(i)+"_ff"))
		nl.ConnectPort(ff.Name, PortCLK, "clk")
	}
	nl.Flush()

	p := NewPacker(nl, nil, cfg)
	p.stagePromoteGlobals()

	n, _ := nl.GetNet("clk")
	if _, ok := n.Attrs["ECP5_IS_GLOBAL"]; !ok {
		t.Fatalf("expected clk to be promoted to global")
	}
}

// TestPromoteGlobalsSkipsLowFanout checks a net below the threshold is left
// alone.
func TestPromoteGlobalsSkipsLowFanout(t *testing.T) {
	nl := NewNetlist()
	nl.CreateNet("clk")
	ff := nl.CreateCell(TypeTrellisFF, "ff0")
	nl.ConnectPort(ff.Name, PortCLK, "clk")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePromoteGlobals()

	n, _ := nl.GetNet("clk")
	if _, ok := n.Attrs["ECP5_IS_GLOBAL"]; ok {
		t.Fatalf("low-fanout net should not be promoted")
	}
}

// TestCheckIntegrityFatalsOnInputOnlySurvivor is §8 property 2: a cell of an
// input-only type surviving to the integrity check must abort Pack via a
// LOG_ERR panic.
func TestCheckIntegrityFatalsOnInputOnlySurvivor(t *testing.T) {
	nl := NewNetlist()
	nl.CreateCell(TypeCCU2C, "stray_carry")
	nl.Flush()

	p := NewPacker(nl, nil, DefaultConfig())

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected checkIntegrity to panic on a surviving CCU2C cell")
		}
		if _, ok := r.(*PackError); !ok {
			t.Fatalf("expected a *PackError panic, got %T", r)
		}
	}()
	p.checkIntegrity()
}

// TestCheckIntegrityFatalsOnDriverMismatch is §8 property 1: a net whose
// claimed driver doesn't match the cell's own port record must abort.
func TestCheckIntegrityFatalsOnDriverMismatch(t *testing.T) {
	nl := NewNetlist()
	lut := nl.CreateCell(TypeLUT4, "lut0")
	nl.CreateNet("z")
	nl.ConnectPort(lut.Name, PortZ, "z")
	nl.Flush()

	n, _ := nl.GetNet("z")
	n.Driver.Port = PortA // corrupt the recorded driver port

	p := NewPacker(nl, nil, DefaultConfig())

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected checkIntegrity to panic on a driver/port mismatch")
		}
	}()
	p.checkIntegrity()
}
