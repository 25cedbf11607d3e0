package services

import (
	"html"
	"strings"

	"nav-tracking-service/internal/domain"
)

// Steps shorter than this are routing-service artifacts (duplicate vertices,
// zero-length connectors), not maneuvers a user should see.
const minInstructionMeters = 10.0

// ProcessInstructions normalizes raw route steps into the presentable
// turn-by-turn list: short artifact steps dropped, markup stripped, service
// ordering preserved. Maneuver type and modifier pass through unmodified for
// downstream iconography.
func ProcessInstructions(steps []domain.Step) []domain.Instruction {
	out := make([]domain.Instruction, 0, len(steps))

	for _, s := range steps {
		// Arrival steps legitimately have zero distance; keep them.
		if s.DistanceMeters < minInstructionMeters && s.Maneuver != "arrive" {
			continue
		}

		out = append(out, domain.Instruction{
			Text:           stripMarkup(s.Instruction),
			DistanceMeters: s.DistanceMeters,
			Duration:       s.Duration,
			Maneuver:       s.Maneuver,
			Modifier:       s.Modifier,
			Icon:           maneuverIcon(s.Maneuver, s.Modifier),
		})
	}

	return out
}

// stripMarkup removes tags and unescapes HTML entities, leaving plain text.
// Some routing services embed markup like <b>Main St</b> in instructions.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(html.UnescapeString(b.String()))
}

// maneuverIcon maps a maneuver type and modifier to the presentation-side
// icon identifier, e.g. ("turn", "sharp left") -> "turn-sharp-left".
func maneuverIcon(maneuver, modifier string) string {
	m := strings.ReplaceAll(strings.TrimSpace(maneuver), " ", "-")
	if m == "" {
		m = "continue"
	}
	mod := strings.ReplaceAll(strings.TrimSpace(modifier), " ", "-")
	if mod == "" {
		return m
	}
	return m + "-" + mod
}
