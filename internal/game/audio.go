package game

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// AudioRound gates a single timed clip. Playback is presentation only; the
// question is still scored with Judge.
type AudioRound struct {
	URL          string `json:"url"`
	StartSeconds int    `json:"startSeconds"`
	StopSeconds  int    `json:"stopSeconds"`
	Playing      bool   `json:"playing"`
	Plays        int    `json:"plays"`
}

func (*AudioRound) Mode() models.QuestionType { return models.TypeAudio }

func (r *AudioRound) view() Round {
	c := *r
	return &c
}

func newAudioRound(q models.Question) *AudioRound {
	start := clipStart(q.AudioURL)
	if q.AudioStartSeconds != nil {
		start = max(0, *q.AudioStartSeconds)
	}
	return &AudioRound{
		URL:          q.AudioURL,
		StartSeconds: start,
		StopSeconds:  q.AudioStopAfter(),
	}
}

// clipStart reads a start offset from a share link's start or t parameter.
// Both plain seconds ("90") and durations ("1m30s") are accepted.
func clipStart(raw string) int {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return 0
	}
	q := u.Query()
	v := q.Get("start")
	if v == "" {
		v = q.Get("t")
	}
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return max(0, n)
	}
	if d, err := time.ParseDuration(v); err == nil {
		return max(0, int(d.Seconds()))
	}
	return 0
}

// PlayAudioClip starts the clip and schedules its automatic stop.
func (s *Session) PlayAudioClip() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*AudioRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	if r.URL == "" || r.Playing {
		return s.snapshot(), nil
	}
	r.Playing = true
	r.Plays++
	gen := s.roundGen
	cancelAll(&s.audioCancel)
	s.audioCancel = s.sched.AfterFunc(time.Duration(r.StopSeconds)*time.Second, func() {
		s.stopAudio(gen)
	})
	s.logAction("", "audio_play", map[string]interface{}{"start": r.StartSeconds, "stop": r.StopSeconds})
	return s.emit(), nil
}

// StopAudioClip stops playback early.
func (s *Session) StopAudioClip() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := requireRound[*AudioRound](s)
	if err != nil {
		return s.snapshot(), err
	}
	r.Playing = false
	cancelAll(&s.audioCancel)
	return s.emit(), nil
}

func (s *Session) stopAudio(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.roundGen {
		return
	}
	r, ok := s.round.(*AudioRound)
	if !ok || !r.Playing {
		return
	}
	r.Playing = false
	s.audioCancel = nil
	s.emit()
}
