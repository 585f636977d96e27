package ecp5pack

import "testing"

// TestClockConstraintPropagationCLKDIVF is §8 property 7's CLKDIVF case:
// the output net's period must equal the scaled input period (DIV=2.0).
func TestClockConstraintPropagationCLKDIVF(t *testing.T) {
	nl := NewNetlist()
	div := nl.CreateCell(TypeCLKDIVF, "div0")
	div.Params["DIV"] = StringProp("2.0")
	nl.CreateNet("clkin")
	nl.CreateNet("clkout")
	nl.ConnectPort(div.Name, "CLKI", "clkin")
	nl.ConnectPort(div.Name, "CDIVX", "clkout")
	nl.Flush()

	in, _ := nl.GetNet("clkin")
	in.Clock = ClockConstraint{Set: true, Period: 10.0, UserSet: true}

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePropagateClockConstraints()

	out, _ := nl.GetNet("clkout")
	if !out.Clock.Set {
		t.Fatalf("expected clkout to receive a derived clock constraint")
	}
	if out.Clock.Period != 20.0 {
		t.Fatalf("expected clkout period 20.0ns (10ns x 2.0), got %v", out.Clock.Period)
	}
}

// TestClockConstraintPropagationPassThrough checks the ECLKSYNCB/
// TRELLIS_ECLKBUF/DCCA pass-through rule of §4.5.
func TestClockConstraintPropagationPassThrough(t *testing.T) {
	nl := NewNetlist()
	buf := nl.CreateCell(TypeECLKBuf, "buf0")
	nl.CreateNet("in")
	nl.CreateNet("out")
	nl.ConnectPort(buf.Name, "ECLKI", "in")
	nl.ConnectPort(buf.Name, "ECLKO", "out")
	nl.Flush()

	in, _ := nl.GetNet("in")
	in.Clock = ClockConstraint{Set: true, Period: 5.0, UserSet: true}

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePropagateClockConstraints()

	out, _ := nl.GetNet("out")
	if out.Clock.Period != 5.0 {
		t.Fatalf("expected pass-through period 5.0ns, got %v", out.Clock.Period)
	}
}

// TestClockConstraintUserOverrideWarns checks that a derived value
// disagreeing with a user-set constraint by more than 0.1% logs a warning
// but leaves the user's value in place.
func TestClockConstraintUserOverrideWarns(t *testing.T) {
	nl := NewNetlist()
	div := nl.CreateCell(TypeCLKDIVF, "div0")
	div.Params["DIV"] = StringProp("2.0")
	nl.CreateNet("clkin")
	nl.CreateNet("clkout")
	nl.ConnectPort(div.Name, "CLKI", "clkin")
	nl.ConnectPort(div.Name, "CDIVX", "clkout")
	nl.Flush()

	in, _ := nl.GetNet("clkin")
	in.Clock = ClockConstraint{Set: true, Period: 10.0, UserSet: true}
	out, _ := nl.GetNet("clkout")
	out.Clock = ClockConstraint{Set: true, Period: 15.0, UserSet: true}

	p := NewPacker(nl, nil, DefaultConfig())
	p.stagePropagateClockConstraints()

	if out.Clock.Period != 15.0 {
		t.Fatalf("user-set constraint must win over the derived value, got %v", out.Clock.Period)
	}
}
