package ui

import (
	"strings"
	"testing"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
)

func TestAmountGroupsThousands(t *testing.T) {
	if got := Amount(1234.5); got != "1,234.5" {
		t.Errorf("expected 1,234.5, got %q", got)
	}
	if got := Amount(35); got != "35" {
		t.Errorf("expected 35, got %q", got)
	}
}

func TestBundleSortsAndSkipsEmpty(t *testing.T) {
	// Act
	got := Bundle(resource.Bundle{resource.Copper: 35, resource.Clay: 1200, resource.Ice: 0})

	// Assert
	if got != "clay 1,200 · copper 35" {
		t.Errorf("unexpected rendering %q", got)
	}
	if strings.Contains(Bundle(resource.Bundle{}), "clay") {
		t.Errorf("empty wallet should not list kinds")
	}
}
