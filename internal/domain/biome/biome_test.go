package biome

import "testing"

func TestForDepth(t *testing.T) {
	table, err := NewTable(
		Biome{ID: "mantle", MinDepth: 2000},
		Biome{ID: "crust", MinDepth: 0},
		Biome{ID: "caves", MinDepth: 500},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	cases := map[float64]string{0: "crust", 499.9: "crust", 500: "caves", 1999: "caves", 1e9: "mantle"}
	for depth, want := range cases {
		if got := table.ForDepth(depth).ID; got != want {
			t.Errorf("depth %v: got %s want %s", depth, got, want)
		}
	}
}

func TestNewTableValidates(t *testing.T) {
	if _, err := NewTable(); err == nil {
		t.Errorf("expected empty table to fail")
	}
	if _, err := NewTable(Biome{ID: "deep", MinDepth: 10}); err == nil {
		t.Errorf("expected table without a surface biome to fail")
	}
	if _, err := NewTable(Biome{ID: "a"}, Biome{ID: "a", MinDepth: 5}); err == nil {
		t.Errorf("expected duplicate ids to fail")
	}
}
