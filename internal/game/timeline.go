package game

import (
	"math/rand"
	"sort"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// TimelineSlot is where a team drops the drawn event: an insertion index into
// the merged left+center+right sequence, or an explicit year it claims to
// share with an already placed card.
type TimelineSlot struct {
	Index  int  `json:"index"`
	OnYear *int `json:"onYear,omitempty"`
}

// TimelineRound draws events one at a time from Queue and files them into
// Left or Right of the fixed CenterYear, both kept sorted by year.
type TimelineRound struct {
	Queue       []models.TimelineEvent `json:"queue"`
	Left        []models.TimelineEvent `json:"left"`
	Right       []models.TimelineEvent `json:"right"`
	CenterYear  int                    `json:"centerYear"`
	TeamIndex   int                    `json:"teamIndex"`
	Potential   int                    `json:"potential"`
	TotalEvents int                    `json:"totalEvents"`

	LastCorrect       *bool  `json:"lastCorrect,omitempty"`
	LastCorrectTeamID string `json:"lastCorrectTeamId,omitempty"`
	Finished          bool   `json:"finished"`
	WinnerTeamID      string `json:"winnerTeamId,omitempty"`
	NoWinner          bool   `json:"noWinner"`
}

func (*TimelineRound) Mode() models.QuestionType { return models.TypeTimeline }

func (r *TimelineRound) view() Round {
	c := *r
	// Queued cards go out face down.
	c.Queue = make([]models.TimelineEvent, len(r.Queue))
	for i, ev := range r.Queue {
		c.Queue[i] = models.TimelineEvent{ID: ev.ID, Text: ev.Text}
	}
	c.Left = append([]models.TimelineEvent(nil), r.Left...)
	c.Right = append([]models.TimelineEvent(nil), r.Right...)
	if r.LastCorrect != nil {
		v := *r.LastCorrect
		c.LastCorrect = &v
	}
	return &c
}

// newTimelineRound shuffles the configured events. Events without a year
// cannot be placed and are left out of the queue, but still count towards
// the per-miss decay.
func newTimelineRound(q models.Question, rng *rand.Rand) *TimelineRound {
	queue := make([]models.TimelineEvent, 0, len(q.TimelineEvents))
	for _, ev := range q.TimelineEvents {
		if ev.Year != nil {
			queue = append(queue, ev)
		}
	}
	rng.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	return &TimelineRound{
		Queue:       queue,
		Left:        []models.TimelineEvent{},
		Right:       []models.TimelineEvent{},
		CenterYear:  q.CenterYear(),
		Potential:   q.BasePoints(),
		TotalEvents: len(q.TimelineEvents),
	}
}

// mergedYears is left + center + right, ascending.
func (r *TimelineRound) mergedYears() []int {
	years := make([]int, 0, len(r.Left)+len(r.Right)+1)
	for _, ev := range r.Left {
		years = append(years, ev.YearOrZero())
	}
	years = append(years, r.CenterYear)
	for _, ev := range r.Right {
		years = append(years, ev.YearOrZero())
	}
	sort.Ints(years)
	return years
}

// judge decides whether placing year at slot is correct.
func (r *TimelineRound) judge(year int, slot TimelineSlot) bool {
	if slot.OnYear != nil {
		return *slot.OnYear == year
	}
	years := r.mergedYears()
	actual := sort.SearchInts(years, year)
	index := clamp(slot.Index, 0, len(years))
	if index != actual {
		return false
	}
	// Dropping between cards onto a year that is already on the line is wrong;
	// the team has to claim the shared year explicitly.
	return actual == len(years) || years[actual] != year
}

func (r *TimelineRound) file(ev models.TimelineEvent) {
	if ev.YearOrZero() < r.CenterYear {
		r.Left = append(r.Left, ev)
		sortByYear(r.Left)
	} else {
		r.Right = append(r.Right, ev)
		sortByYear(r.Right)
	}
}

func sortByYear(evs []models.TimelineEvent) {
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].YearOrZero() < evs[j].YearOrZero() })
}

// timelineTeams is the rotation timeline turns walk: the active order, or the
// whole roster when no order is set.
func (s *Session) timelineTeams() []string {
	if s.turn.Active() {
		return s.turn.Order
	}
	return models.TeamIDs(s.teams)
}

func (s *Session) timelineTeam(r *TimelineRound) string {
	order := s.timelineTeams()
	if len(order) == 0 {
		return ""
	}
	return order[r.TeamIndex%len(order)]
}

// nextTimelineTeam is the team after id, or the first team when id is unknown.
func (s *Session) nextTimelineTeam(id string) string {
	order := s.timelineTeams()
	if len(order) == 0 {
		return ""
	}
	for i, t := range order {
		if t == id {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// PlaceTimelineEvent places the front of the queue. When the queue empties the
// winner is scored and the question is committed, but the round stays open
// for review until CloseQuestion.
func (s *Session) PlaceTimelineEvent(slot TimelineSlot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*TimelineRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if r.Finished || len(r.Queue) == 0 {
		return s.snapshot(), nil
	}
	current := r.Queue[0]
	if current.Year == nil {
		return s.snapshot(), nil
	}

	rotate := s.active.TimelineRotates()
	actor := s.timelineTeam(r)
	correct := r.judge(*current.Year, slot)

	r.file(current)
	r.Queue = r.Queue[1:]
	r.LastCorrect = &correct

	base := s.active.BasePoints()
	if correct {
		r.LastCorrectTeamID = actor
		s.playCue(CueSuccessChime, nil)
	} else {
		s.playCue(CueDownbeat, nil)
		if !rotate {
			decay := (base + max(1, r.TotalEvents) - 1) / max(1, r.TotalEvents)
			r.Potential = max(0, r.Potential-decay)
		}
	}

	remaining := len(r.Queue)
	if !correct && remaining > 0 && rotate {
		r.TeamIndex++
	}
	s.logAction(actor, "timeline_place", map[string]interface{}{
		"event":     current.ID,
		"correct":   correct,
		"potential": r.Potential,
	})

	if remaining == 0 {
		r.Finished = true
		winner := actor
		if !correct && rotate {
			winner = s.nextTimelineTeam(actor)
		}
		if winner == "" {
			r.NoWinner = true
			s.commit(outcome{}, true)
		} else {
			r.WinnerTeamID = winner
			s.commit(outcome{correct: true, teamID: winner, reward: r.Potential}, true)
		}
	}
	return s.emit(), nil
}
