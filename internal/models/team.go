package models

// Team is a persisted roster entry. Score is unbounded and may go negative.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
	Score   int      `json:"score"`

	// Display accents, all optional.
	BadgeEmoji string `json:"badgeEmoji,omitempty"`
	AccentBase string `json:"accentBase,omitempty"`
	AccentGlow string `json:"accentGlow,omitempty"`
}

// FindTeam returns the index of the team with the given id, or -1.
func FindTeam(teams []Team, id string) int {
	for i := range teams {
		if teams[i].ID == id {
			return i
		}
	}
	return -1
}

// WithScoreDelta returns a copy of teams where the team with the given id has
// delta added to its score. The input slice is never modified, so snapshots
// handed out earlier keep their values. ok is false when no team matched.
func WithScoreDelta(teams []Team, id string, delta int) (next []Team, ok bool) {
	next = make([]Team, len(teams))
	copy(next, teams)
	if idx := FindTeam(next, id); idx >= 0 {
		next[idx].Score += delta
		return next, true
	}
	return next, false
}

// WithScore is like WithScoreDelta but overwrites the score.
func WithScore(teams []Team, id string, score int) (next []Team, ok bool) {
	next = make([]Team, len(teams))
	copy(next, teams)
	if idx := FindTeam(next, id); idx >= 0 {
		next[idx].Score = score
		return next, true
	}
	return next, false
}

// TeamIDs lists the ids in roster order.
func TeamIDs(teams []Team) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
