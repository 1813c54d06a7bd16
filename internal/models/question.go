package models

// PointValues is the fixed ladder a question's points are drawn from.
var PointValues = []int{100, 200, 300, 400, 500}

// QuestionType selects the play mechanic behind a tile.
type QuestionType string

const (
	TypeStandard   QuestionType = "standard"
	TypeAudio      QuestionType = "audio"
	TypeLyrics     QuestionType = "lyrics"
	TypeGeoguesser QuestionType = "geoguesser"
	TypeJoker      QuestionType = "joker"
	TypeTimeline   QuestionType = "timeline"
	TypeMcq        QuestionType = "mcq"
)

// Defaults applied when a question leaves the corresponding field unset.
const (
	DefaultGeoTimerSeconds    = 10
	DefaultAudioStopSeconds   = 10
	DefaultJokerCount         = 5
	DefaultJokerMin           = 1
	DefaultJokerMax           = 9
	DefaultTimelineCenterYear = 2000
)

// TimelineEvent is one card of a timeline question.
type TimelineEvent struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Year         *int   `json:"year"`
	IsBC         *bool  `json:"isBC,omitempty"`
	TimelineText string `json:"timelineText,omitempty"`
}

// YearOrZero mirrors how unset years sort: as year 0.
func (e TimelineEvent) YearOrZero() int {
	if e.Year == nil {
		return 0
	}
	return *e.Year
}

// Question is a persisted board tile. Only Answered is mutated during play.
// Nullable authoring fields are pointers; use the accessor methods to read them
// with their defaults applied.
type Question struct {
	ID       string       `json:"id"`
	Category string       `json:"category"`
	Points   int          `json:"points"`
	Prompt   string       `json:"prompt"`
	Answer   string       `json:"answer"`
	Answered bool         `json:"answered"`
	Type     QuestionType `json:"type,omitempty"`

	ImageData       string `json:"imageData,omitempty"`
	ImageName       string `json:"imageName,omitempty"`
	AnswerImageData string `json:"answerImageData,omitempty"`
	AnswerImageName string `json:"answerImageName,omitempty"`

	// lyrics
	LyricsSegments   []string `json:"lyricsSegments,omitempty"`
	LyricsRedPattern []int    `json:"lyricsRedPattern,omitempty"`

	// geoguesser
	MapEmbedURL         string `json:"mapEmbedUrl,omitempty"`
	AnswerLocationLabel string `json:"answerLocationLabel,omitempty"`
	AnswerLocationURL   string `json:"answerLocationUrl,omitempty"`
	AnswerVideoURL      string `json:"answerVideoUrl,omitempty"`
	AnswerVideoAutoplay *bool  `json:"answerVideoAutoplay,omitempty"`
	GeoTimerSeconds     *int   `json:"geoTimerSeconds,omitempty"`
	GeoUnlockCost       *int   `json:"geoUnlockCost,omitempty"`

	// joker
	JokerCount        *int  `json:"jokerCount,omitempty"`
	JokerMin          *int  `json:"jokerMin,omitempty"`
	JokerMax          *int  `json:"jokerMax,omitempty"`
	JokerRotateOnMiss *bool `json:"jokerRotateOnMiss,omitempty"`

	// timeline
	TimelineCenterYear   *int            `json:"timelineCenterYear,omitempty"`
	TimelineCenterLabel  string          `json:"timelineCenterLabel,omitempty"`
	TimelineTitle        string          `json:"timelineTitle,omitempty"`
	TimelineEvents       []TimelineEvent `json:"timelineEvents,omitempty"`
	TimelineRotateOnMiss *bool           `json:"timelineRotateOnMiss,omitempty"`

	// mcq
	McqOptions      []string `json:"mcqOptions,omitempty"`
	McqCorrectIndex *int     `json:"mcqCorrectIndex,omitempty"`
	McqRotateOnMiss *bool    `json:"mcqRotateOnMiss,omitempty"`

	// audio
	AudioURL          string `json:"audioUrl,omitempty"`
	AudioStartSeconds *int   `json:"audioStartSeconds,omitempty"`
	AudioStopSeconds  *int   `json:"audioStopSeconds,omitempty"`
}

// Mode returns the question type, treating unknown or empty tags as standard.
func (q Question) Mode() QuestionType {
	switch q.Type {
	case TypeAudio, TypeLyrics, TypeGeoguesser, TypeJoker, TypeTimeline, TypeMcq:
		return q.Type
	default:
		return TypeStandard
	}
}

// BasePoints is the question's point value, never negative.
func (q Question) BasePoints() int {
	if q.Points < 0 {
		return 0
	}
	return q.Points
}

// GeoTimer returns the unlock countdown length in seconds, at least 1.
func (q Question) GeoTimer() int {
	return max(1, intOr(q.GeoTimerSeconds, DefaultGeoTimerSeconds))
}

// GeoCost returns the one-time unlock cost, never negative.
func (q Question) GeoCost() int {
	return max(0, intOr(q.GeoUnlockCost, 0))
}

// AudioStopAfter returns the clip length in seconds, at least 1.
func (q Question) AudioStopAfter() int {
	return max(1, intOr(q.AudioStopSeconds, DefaultAudioStopSeconds))
}

// JokerRotates reports whether a missed joker guess passes the board turn. Defaults to true.
func (q Question) JokerRotates() bool { return boolOr(q.JokerRotateOnMiss, true) }

// TimelineRotates reports whether a wrong placement passes the timeline turn. Defaults to true.
func (q Question) TimelineRotates() bool { return boolOr(q.TimelineRotateOnMiss, true) }

// McqRotates is carried for multi-attempt variants. Defaults to false.
func (q Question) McqRotates() bool { return boolOr(q.McqRotateOnMiss, false) }

// CenterYear is the fixed pivot of a timeline question.
func (q Question) CenterYear() int {
	return intOr(q.TimelineCenterYear, DefaultTimelineCenterYear)
}

// McqAnswer is the index of the correct option, defaulting to 0.
func (q Question) McqAnswer() int { return intOr(q.McqCorrectIndex, 0) }

// MarkAnswered returns a copy of questions with the question of the given id flagged answered.
func MarkAnswered(questions []Question, id string) []Question {
	next := make([]Question, len(questions))
	copy(next, questions)
	for i := range next {
		if next[i].ID == id {
			next[i].Answered = true
		}
	}
	return next
}

// AllAnswered reports whether a non-empty board has every tile answered.
func AllAnswered(questions []Question) bool {
	if len(questions) == 0 {
		return false
	}
	for _, q := range questions {
		if !q.Answered {
			return false
		}
	}
	return true
}

// Categories lists categories in first-seen order.
func Categories(questions []Question) []string {
	seen := make(map[string]bool)
	var ordered []string
	for _, q := range questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			ordered = append(ordered, q.Category)
		}
	}
	return ordered
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
