package resource

import "testing"

func TestBundleCoversAndSub(t *testing.T) {
	wallet := Bundle{Clay: 50, Iron: 3}

	if !wallet.Covers(Bundle{Clay: 50}) {
		t.Fatalf("expected wallet to cover exact cost")
	}
	if wallet.Covers(Bundle{Clay: 51}) {
		t.Fatalf("expected wallet not to cover clay 51")
	}
	if wallet.Covers(Bundle{Gold: 1}) {
		t.Fatalf("expected wallet not to cover a missing resource")
	}

	wallet.Sub(Bundle{Clay: 50})
	if wallet[Clay] != 0 {
		t.Errorf("expected clay 0 after sub, got %v", wallet[Clay])
	}
}

func TestBundleMissing(t *testing.T) {
	wallet := Bundle{Clay: 10}
	missing := wallet.Missing(Bundle{Clay: 25, Iron: 2})

	if missing[Clay] != 15 || missing[Iron] != 2 {
		t.Fatalf("unexpected shortfall %v", missing)
	}
}

func TestBundleCloneIsIndependent(t *testing.T) {
	orig := Bundle{Copper: 5}
	cp := orig.Clone()
	cp[Copper] = 99

	if orig[Copper] != 5 {
		t.Fatalf("clone mutated original: %v", orig)
	}
}

func TestBundleScaleAndFloor(t *testing.T) {
	got := Bundle{Clay: 25, Iron: 3}.Scale(0.5).Floor()
	if got[Clay] != 12 || got[Iron] != 1 {
		t.Fatalf("unexpected scaled bundle %v", got)
	}
}

func TestParse(t *testing.T) {
	k, err := Parse(" Clay ")
	if err != nil || k != Clay {
		t.Fatalf("Parse(Clay) = %q, %v", k, err)
	}
	if _, err := Parse("unobtainium"); err == nil {
		t.Fatalf("expected error for unknown resource")
	}
}

func TestBundleString(t *testing.T) {
	if got := (Bundle{Iron: 2, Clay: 50}).String(); got != "{clay: 50, iron: 2}" {
		t.Fatalf("unexpected String() %q", got)
	}
}
