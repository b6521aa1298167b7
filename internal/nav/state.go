// Package nav is the navigation state machine and the address fragment it
// mirrors.
//
// Every user transition writes the canonical fragment of the new state to a
// Location. External fragment changes (history traversal, deep links) flow
// back through HashChanged, which updates the state and never writes.
package nav

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the top-level user path.
type Mode string

const (
	ModeNone       Mode = ""
	ModeGuided     Mode = "guided"
	ModeProduction Mode = "production"
)

// Level is a stage of guided mode.
type Level string

const (
	LevelNone Level = ""
	Level0    Level = "level0"
	Level1    Level = "level1"
)

// ParseLevel accepts "0", "1", "level0" and "level1".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "level0":
		return Level0, nil
	case "1", "level1":
		return Level1, nil
	default:
		return LevelNone, fmt.Errorf("unknown level: %q", s)
	}
}

// State is the {mode, level} pair. Level is LevelNone unless Mode is
// ModeGuided.
type State struct {
	Mode  Mode
	Level Level
}

// Landing is the initial state.
var Landing = State{}

func (s State) normalized() State {
	if s.Mode != ModeGuided {
		s.Level = LevelNone
	}
	return s
}

// ErrUnknownFragment is returned by Decode for fragments with no state.
var ErrUnknownFragment = errors.New("unknown fragment")

// Encode returns the canonical fragment of s: "" for the landing state, the
// mode name, or "mode/levelN".
func Encode(s State) string {
	s = s.normalized()
	if s.Mode == ModeNone {
		return ""
	}
	if s.Level == LevelNone {
		return string(s.Mode)
	}
	return string(s.Mode) + "/" + string(s.Level)
}

// Decode parses a fragment, with or without its leading '#'.
func Decode(fragment string) (State, error) {
	switch strings.TrimPrefix(fragment, "#") {
	case "":
		return Landing, nil
	case "guided":
		return State{Mode: ModeGuided}, nil
	case "guided/level0":
		return State{Mode: ModeGuided, Level: Level0}, nil
	case "guided/level1":
		return State{Mode: ModeGuided, Level: Level1}, nil
	case "production":
		return State{Mode: ModeProduction}, nil
	default:
		return Landing, fmt.Errorf("%w: %q", ErrUnknownFragment, fragment)
	}
}

// Fragments lists every canonical fragment.
func Fragments() []string {
	return []string{"", "guided", "guided/level0", "guided/level1", "production"}
}
