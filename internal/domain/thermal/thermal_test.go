package thermal

import (
	"testing"
	"time"
)

func TestPhaseFollowsHeat(t *testing.T) {
	if (State{Heat: 99.99}).Phase() != PhaseCool {
		t.Errorf("below max heat must be COOL")
	}
	if (State{Heat: MaxHeat}).Phase() != PhaseOverheated {
		t.Errorf("max heat must be OVERHEATED")
	}
}

func TestCoolingDown(t *testing.T) {
	now := time.Unix(100, 0)
	s := State{VentReadyAt: now.Add(time.Second)}

	if !s.CoolingDown(now) {
		t.Errorf("expected cooldown before VentReadyAt")
	}
	if s.CoolingDown(now.Add(time.Second)) {
		t.Errorf("expected vent ready at VentReadyAt")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-3) != 0 || Clamp(150) != MaxHeat || Clamp(42) != 42 {
		t.Errorf("clamp out of bounds")
	}
}
