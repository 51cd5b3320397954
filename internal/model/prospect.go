package model

import "fmt"

// Position represents a prospect's playing position. It determines which
// metric set applies when scoring.
type Position string

const (
	PositionForward Position = "forward"
	PositionDefense Position = "defense"
	PositionGoalie  Position = "goalie"
)

// AllPositions returns all defined positions.
func AllPositions() []Position {
	return []Position{PositionForward, PositionDefense, PositionGoalie}
}

// ParsePosition validates and normalizes a position string.
func ParsePosition(s string) (Position, error) {
	for _, p := range AllPositions() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", s)
}

// Level is a coarse developmental tier a prospect currently plays at.
type Level string

const (
	LevelJuniorB  Level = "junior_b"
	LevelJuniorA  Level = "junior_a"
	LevelNCAA     Level = "ncaa"
	LevelProMinor Level = "pro_minor"
)

// AllLevels returns all defined levels.
func AllLevels() []Level {
	return []Level{LevelJuniorB, LevelJuniorA, LevelNCAA, LevelProMinor}
}

// ParseLevel validates and normalizes a level string.
func ParseLevel(s string) (Level, error) {
	for _, l := range AllLevels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Prospect is a ranked subject. Prospects are read-only inputs to the
// engine; the ingestion pipeline owns and mutates them.
type Prospect struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Position     Position `json:"position" yaml:"position"`
	Organization string   `json:"organization" yaml:"organization"`
	Level        Level    `json:"level" yaml:"level"`
	Age          *float64 `json:"age,omitempty" yaml:"age,omitempty"`
	ScoutGrade   float64  `json:"scout_grade" yaml:"scout_grade"`
}
