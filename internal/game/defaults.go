package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/quizboard/internal/models"
)

// Accent is a selectable team badge.
type Accent struct {
	Emoji string
	Label string
	Base  string
	Glow  string
}

var Accents = []Accent{
	{"🎄", "Tree", "#0b8a3b", "#d1fae5"},
	{"⭐️", "Star", "#b8860b", "#ffe29f"},
	{"🔔", "Bell", "#b03060", "#ffd6e0"},
	{"❄️", "Snow", "#0f4c75", "#b0e0ff"},
	{"🎁", "Gift", "#b9001f", "#f7c948"},
	{"🕯️", "Candle", "#f4a259", "#ffe8c2"},
	{"🦌", "Reindeer", "#8b5a2b", "#f3d6b3"},
	{"🍪", "Cookie", "#c68642", "#ffe3c4"},
	{"🌠", "Shooting Star", "#4f46e5", "#c7d2fe"},
}

// NewID returns a prefixed random id, e.g. "team-<uuid>".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func defaultTeam(name string, accent Accent) models.Team {
	players := make([]models.Player, 3)
	for i := range players {
		players[i] = models.Player{ID: NewID("p"), Name: "Player " + string(rune('1'+i))}
	}
	return models.Team{
		ID:         NewID("team"),
		Name:       name,
		Players:    players,
		BadgeEmoji: accent.Emoji,
		AccentBase: accent.Base,
		AccentGlow: accent.Glow,
	}
}

// DefaultTeams seeds an empty roster.
func DefaultTeams() []models.Team {
	return []models.Team{
		defaultTeam("Gingerbread", Accents[7]),
		defaultTeam("Shooting Stars", Accents[8]),
		defaultTeam("Jingle Bells", Accents[2]),
	}
}

// DefaultQuestions seeds an empty board with one tile of each main mode.
func DefaultQuestions() []models.Question {
	const category = "Winter Traditions"
	year := func(y int) *int { return &y }
	zero := 0
	return []models.Question{
		{
			ID: NewID("q"), Category: category, Points: 100, Type: models.TypeStandard,
			Prompt: "Which spice gives gingerbread its name?",
			Answer: "Ginger",
		},
		{
			ID: NewID("q"), Category: category, Points: 200, Type: models.TypeMcq,
			Prompt:          "How many kinds of cookies does tradition say you should bake?",
			McqOptions:      []string{"7", "9", "11", "13"},
			McqCorrectIndex: &zero,
			Answer:          "7",
		},
		{
			ID: NewID("q"), Category: category, Points: 300, Type: models.TypeLyrics,
			Prompt:         "Name the song!",
			LyricsSegments: []string{"dashing", "through", "the", "snow", "in", "a", "one-horse", "open", "sleigh"},
			Answer:         "Jingle Bells",
		},
		{
			ID: NewID("q"), Category: category, Points: 400, Type: models.TypeTimeline,
			Prompt:        "Put the events in order.",
			TimelineTitle: "Winter Traditions",
			TimelineEvents: []models.TimelineEvent{
				{ID: NewID("tl"), Text: "Norway sends its first Christmas tree to London", Year: year(1947)},
				{ID: NewID("tl"), Text: "\"Jingle Bells\" is published", Year: year(1857)},
				{ID: NewID("tl"), Text: "The first commercial Christmas card is printed", Year: year(1843)},
				{ID: NewID("tl"), Text: "A streamed advent calendar series premieres", Year: year(2016)},
			},
			Answer: "1843, 1857, 1947, 2016",
		},
		{
			ID: NewID("q"), Category: category, Points: 500, Type: models.TypeGeoguesser,
			Prompt:              "Where is this decorated square?",
			AnswerLocationLabel: "Torgallmenningen, Bergen",
			AnswerLocationURL:   "https://maps.google.com/?q=60.39321104609752,5.324059880868293",
			Answer:              "Torgallmenningen, Bergen",
		},
	}
}
