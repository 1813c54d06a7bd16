package game

// Cue names a sound effect. Cues are advisory and never affect state.
type Cue string

const (
	CueSadBlip       Cue = "sad_blip"
	CueCountdownBeep Cue = "countdown_beep"
	CueFinalAlarm    Cue = "final_alarm"
	CueSuccessChime  Cue = "success_chime"
	CueDownbeat      Cue = "downbeat"
	CueSlotSpinStart Cue = "slot_spin_start"
	CueSlotSpinStop  Cue = "slot_spin_stop"
	CueSlotResolve   Cue = "slot_resolve"
	CueBigWin        Cue = "big_win"
	CueJokerSparkle  Cue = "joker_sparkle"
	CueBoing         Cue = "boing"
)

// CuePlayer receives fire-and-forget cue requests.
type CuePlayer interface {
	Play(cue Cue)
}

type noopCues struct{}

func (noopCues) Play(Cue) {}

// countdownBeepHz mirrors the rising pitch of the last three countdown seconds.
func countdownBeepHz(remaining int) int {
	return 780 + remaining*80
}
