package gcodewriter

import (
	"strings"
	"testing"

	"github.com/tpplan/toolpath/internal/geom"
)

func TestWriteMove_TravelHasNoExtrudeTerm(t *testing.T) {
	w := New(GetProfile("Marlin"), RetractionSettings{})
	w.SetCurrentZ(200)
	w.WriteMove(geom.IntPoint{X: 10000, Y: 10000, Z: 200}, 150, 0)
	out := w.String()
	if strings.Contains(out, "E") {
		t.Errorf("travel move should not contain an extrusion term, got %q", out)
	}
	if !strings.HasPrefix(out, w.profile.RapidMove) {
		t.Errorf("travel move should use the rapid-move command, got %q", out)
	}
}

func TestWriteMove_ExtrusionHasExtrudeTerm(t *testing.T) {
	w := New(GetProfile("Marlin"), RetractionSettings{})
	w.SetCurrentZ(200)
	w.WriteMove(geom.IntPoint{X: 10000, Y: 0, Z: 200}, 60, 400)
	out := w.String()
	if !strings.Contains(out, "E") {
		t.Errorf("extrusion move should contain an extrusion term, got %q", out)
	}
	if !strings.HasPrefix(out, w.profile.FeedMove) {
		t.Errorf("extrusion move should use the feed-move command, got %q", out)
	}
}

func TestWriteMove_UpdatesPosition(t *testing.T) {
	w := New(GetProfile("Marlin"), RetractionSettings{})
	dst := geom.IntPoint{X: 5000, Y: 6000, Z: 200}
	w.WriteMove(dst, 100, 0)
	if w.GetPosition() != dst {
		t.Errorf("GetPosition() = %v, want %v", w.GetPosition(), dst)
	}
}

func TestSwitchExtruder_UpdatesIndex(t *testing.T) {
	w := New(GetProfile("Marlin"), RetractionSettings{})
	w.SwitchExtruder(1)
	if w.GetExtruderIndex() != 1 {
		t.Errorf("GetExtruderIndex() = %d, want 1", w.GetExtruderIndex())
	}
}

func TestWriteFanCommand_ZeroUsesFanOff(t *testing.T) {
	w := New(GetProfile("Marlin"), RetractionSettings{})
	w.WriteFanCommand(0)
	if !strings.Contains(w.String(), "M107") {
		t.Errorf("expected fan-off command, got %q", w.String())
	}
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("NonExistent")
	if p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}

func TestGetProfileFindsCustom(t *testing.T) {
	CustomProfiles = []Profile{{Name: "MyCustom", RapidMove: "G0", FeedMove: "G1"}}
	defer func() { CustomProfiles = nil }()

	p := GetProfile("MyCustom")
	if p.Name != "MyCustom" {
		t.Errorf("expected MyCustom, got %s", p.Name)
	}
}
