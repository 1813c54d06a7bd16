package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// BackupVersion is the only payload version understood.
const BackupVersion = 1

var (
	ErrBackupNotJSON          = errors.New("File is not valid JSON.")
	ErrBackupInvalid          = errors.New("Backup format is invalid.")
	ErrBackupMissingTeams     = errors.New("Backup is missing teams.")
	ErrBackupMissingQuestions = errors.New("Backup is missing questions.")
)

// Backup is a portable copy of every persisted record.
type Backup struct {
	Version    int               `json:"version"`
	ExportedAt string            `json:"exportedAt"`
	Teams      []models.Team     `json:"teams"`
	Questions  []models.Question `json:"questions"`
	TurnState  models.TurnState  `json:"turnState"`
}

func NewBackup(teams []models.Team, questions []models.Question, turn models.TurnState, now time.Time) Backup {
	b := Backup{
		Version:    BackupVersion,
		ExportedAt: now.UTC().Format(time.RFC3339Nano),
		Teams:      append([]models.Team{}, teams...),
		Questions:  append([]models.Question{}, questions...),
		TurnState:  turn.Clone(),
	}
	b.TurnState.Normalize()
	return b
}

// ParseBackup validates raw payload bytes. The error messages are meant to be
// shown to the host as-is. A missing or malformed turn state falls back to an
// empty rotation.
func ParseBackup(raw []byte, now time.Time) (Backup, error) {
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Backup{}, ErrBackupNotJSON
	}
	obj, ok := probe.(map[string]interface{})
	if !ok {
		return Backup{}, ErrBackupInvalid
	}
	if _, ok := obj["teams"].([]interface{}); !ok {
		return Backup{}, ErrBackupMissingTeams
	}
	if _, ok := obj["questions"].([]interface{}); !ok {
		return Backup{}, ErrBackupMissingQuestions
	}

	var payload struct {
		ExportedAt string            `json:"exportedAt"`
		Teams      []models.Team     `json:"teams"`
		Questions  []models.Question `json:"questions"`
		TurnState  json.RawMessage   `json:"turnState"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Backup{}, ErrBackupInvalid
	}

	turn := models.TurnState{Order: []string{}}
	if len(payload.TurnState) > 0 {
		var ts models.TurnState
		if err := json.Unmarshal(payload.TurnState, &ts); err == nil {
			turn = ts
		}
	}
	turn.Normalize()

	b := Backup{
		Version:    BackupVersion,
		ExportedAt: payload.ExportedAt,
		Teams:      payload.Teams,
		Questions:  payload.Questions,
		TurnState:  turn,
	}
	if b.ExportedAt == "" {
		b.ExportedAt = now.UTC().Format(time.RFC3339Nano)
	}
	return b, nil
}
