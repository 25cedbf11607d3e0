package services

import (
	"testing"
	"time"

	"nav-tracking-service/internal/domain"
)

func TestProcessInstructionsDropsShortSteps(t *testing.T) {
	steps := []domain.Step{
		{Instruction: "Head north", Maneuver: "depart", DistanceMeters: 120},
		{Instruction: "Nudge", Maneuver: "turn", Modifier: "slight right", DistanceMeters: 4},
		{Instruction: "Turn left onto Main St", Maneuver: "turn", Modifier: "left", DistanceMeters: 250},
		{Instruction: "You have arrived", Maneuver: "arrive", DistanceMeters: 0},
	}

	got := ProcessInstructions(steps)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (short step dropped, arrival kept)", len(got))
	}
	if got[0].Maneuver != "depart" || got[1].Maneuver != "turn" || got[2].Maneuver != "arrive" {
		t.Fatalf("service ordering not preserved: %+v", got)
	}
}

func TestProcessInstructionsStripsMarkup(t *testing.T) {
	steps := []domain.Step{
		{Instruction: "Turn <b>left</b> onto <div class=\"rd\">Main &amp; 5th</div>", Maneuver: "turn", Modifier: "left", DistanceMeters: 80},
	}

	got := ProcessInstructions(steps)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Text != "Turn left onto Main & 5th" {
		t.Fatalf("Text = %q, want plain text", got[0].Text)
	}
}

func TestProcessInstructionsPassesManeuverThrough(t *testing.T) {
	steps := []domain.Step{
		{Instruction: "Slight left", Maneuver: "turn", Modifier: "slight left", DistanceMeters: 40, Duration: 12 * time.Second},
	}

	got := ProcessInstructions(steps)
	if got[0].Maneuver != "turn" || got[0].Modifier != "slight left" {
		t.Fatalf("maneuver/modifier reinterpreted: %+v", got[0])
	}
	if got[0].Icon != "turn-slight-left" {
		t.Fatalf("Icon = %q, want turn-slight-left", got[0].Icon)
	}
	if got[0].Duration != 12*time.Second {
		t.Fatalf("Duration = %v, want 12s", got[0].Duration)
	}
}

func TestProcessInstructionsEmpty(t *testing.T) {
	if got := ProcessInstructions(nil); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestStripMarkupPlainText(t *testing.T) {
	if got := stripMarkup("Continue straight"); got != "Continue straight" {
		t.Fatalf("got %q", got)
	}
}
