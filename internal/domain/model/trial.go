package model

import (
	"fmt"
	"strings"
)

// Outcome is the result of a free-throw attempt.
type Outcome string

// Known outcomes.
const (
	Made   Outcome = "made"
	Missed Outcome = "missed"
)

// Outcomes lists every known outcome in reporting order.
func Outcomes() []Outcome { return []Outcome{Made, Missed} }

// ParseOutcome maps a label such as "made" or "Missed" to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case Made:
		return Made, nil
	case Missed:
		return Missed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
}

// Joint names a tracked marker measured against the shoulder midpoint.
type Joint string

// Tracked joints of the shooting arm.
const (
	Elbow Joint = "elbow"
	Wrist Joint = "wrist"
	Hand  Joint = "hand"
)

// Joints lists the tracked joints in proximal-to-distal order.
func Joints() []Joint { return []Joint{Elbow, Wrist, Hand} }

// Frame is one motion-capture sample of the shooter.
type Frame struct {
	TrialID       string
	Index         int
	Time          float64
	LeftShoulder  Point
	RightShoulder Point
	Elbow         Point
	Wrist         Point
	Hand          Point
}

// Joint returns the position of j in this frame. Unknown joints are missing.
func (f *Frame) Joint(j Joint) Point {
	switch j {
	case Elbow:
		return f.Elbow
	case Wrist:
		return f.Wrist
	case Hand:
		return f.Hand
	}
	return MissingPoint()
}

// Trial is one free-throw attempt: ordered frames plus the shot outcome.
type Trial struct {
	ParticipantID string
	TrialID       string
	Outcome       Outcome
	Frames        []Frame
}

// Validate checks the structural invariants of a trial.
func (t *Trial) Validate() error {
	if strings.TrimSpace(t.TrialID) == "" {
		return ErrMissingTrialID
	}
	if len(t.Frames) == 0 {
		return fmt.Errorf("trial %s: %w", t.TrialID, ErrEmptyTrial)
	}
	if t.Outcome != Made && t.Outcome != Missed {
		return fmt.Errorf("trial %s: %w: %q", t.TrialID, ErrUnknownOutcome, t.Outcome)
	}
	return nil
}
