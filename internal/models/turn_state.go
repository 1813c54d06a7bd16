package models

// TurnState is the persisted rotation: an ordered list of team ids and two
// independent cursors. An empty Order means no rotation is active.
type TurnState struct {
	Order       []string `json:"order"`
	BoardIndex  int      `json:"boardIndex"`
	LyricsIndex int      `json:"lyricsIndex"`
}

// SetOrder replaces the rotation and rewinds both cursors.
func (t *TurnState) SetOrder(ids []string) {
	t.Order = append([]string(nil), ids...)
	t.BoardIndex = 0
	t.LyricsIndex = 0
}

// Reset clears the rotation.
func (t *TurnState) Reset() {
	t.Order = []string{}
	t.BoardIndex = 0
	t.LyricsIndex = 0
}

// Active reports whether a rotation is set.
func (t TurnState) Active() bool { return len(t.Order) > 0 }

// AdvanceBoard moves the board cursor to the next team. No-op without a rotation.
func (t *TurnState) AdvanceBoard() {
	if len(t.Order) == 0 {
		return
	}
	t.BoardIndex = (t.BoardIndex + 1) % len(t.Order)
}

// AdvanceLyrics moves the lyrics cursor to the next team. No-op without a rotation.
func (t *TurnState) AdvanceLyrics() {
	if len(t.Order) == 0 {
		return
	}
	t.LyricsIndex = (t.LyricsIndex + 1) % len(t.Order)
}

// CurrentBoardTeam returns the team id under the board cursor, or "".
func (t TurnState) CurrentBoardTeam() string {
	if len(t.Order) == 0 {
		return ""
	}
	return t.Order[wrap(t.BoardIndex, len(t.Order))]
}

// CurrentLyricsTeam returns the team id under the lyrics cursor, or "".
func (t TurnState) CurrentLyricsTeam() string {
	if len(t.Order) == 0 {
		return ""
	}
	return t.Order[wrap(t.LyricsIndex, len(t.Order))]
}

// Prune drops ids that are not in valid and brings both cursors back into range.
// Used after loading, since roster edits happen outside the engine.
func (t *TurnState) Prune(valid []string) {
	keep := make(map[string]bool, len(valid))
	for _, id := range valid {
		keep[id] = true
	}
	order := make([]string, 0, len(t.Order))
	for _, id := range t.Order {
		if keep[id] {
			order = append(order, id)
		}
	}
	t.Order = order
	t.Normalize()
}

// Normalize restores 0 <= cursor < len(Order), or zero cursors when Order is empty.
func (t *TurnState) Normalize() {
	if t.Order == nil {
		t.Order = []string{}
	}
	if len(t.Order) == 0 {
		t.BoardIndex, t.LyricsIndex = 0, 0
		return
	}
	t.BoardIndex = wrap(t.BoardIndex, len(t.Order))
	t.LyricsIndex = wrap(t.LyricsIndex, len(t.Order))
}

// Clone returns a copy that shares no memory with t.
func (t TurnState) Clone() TurnState {
	t.Order = append([]string{}, t.Order...)
	return t
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
