package model

// Summary aggregates the valid samples of one measurement over a trial.
// A Summary with Count == 0 is missing and every statistic is invalid.
type Summary struct {
	Count  int   `json:"count"`
	Mean   Value `json:"mean"`
	Spread Value `json:"spread"`
	Max    Value `json:"max"`
}

// Missing reports whether no valid sample contributed to the summary.
func (s Summary) Missing() bool { return s.Count == 0 }

// TrialSummary holds per-joint statistics for one trial.
type TrialSummary struct {
	Number           int               `json:"trial_number"`
	ParticipantID    string            `json:"participant_id"`
	TrialID          string            `json:"trial_id"`
	Outcome          Outcome           `json:"result"`
	Frames           int               `json:"frames"`
	Deviation        map[Joint]Summary `json:"deviation"`
	ShoulderDistance map[Joint]Summary `json:"shoulder_distance"`
}

// Groups partitions trial summaries by outcome, preserving input order.
type Groups struct {
	Made   []TrialSummary `json:"made"`
	Missed []TrialSummary `json:"missed"`
}

// Len returns the total number of trials across both groups.
func (g Groups) Len() int { return len(g.Made) + len(g.Missed) }
