package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/quizboard/internal/models"
)

// ReadJSON decodes the record at key into a T. A missing key yields fallback
// and no error; a backend or decode failure yields fallback and the error.
func ReadJSON[T any](ctx context.Context, s Store, key Key, fallback T) (T, error) {
	raw, err := s.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("reading %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback, fmt.Errorf("decoding %s: %w", key, err)
	}
	return v, nil
}

// WriteJSON encodes v and stores it under key.
func WriteJSON(ctx context.Context, s Store, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.Write(ctx, key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func LoadTeams(ctx context.Context, s Store) ([]models.Team, error) {
	teams, err := ReadJSON(ctx, s, KeyTeams, []models.Team{})
	if teams == nil {
		teams = []models.Team{}
	}
	return teams, err
}

func LoadQuestions(ctx context.Context, s Store) ([]models.Question, error) {
	questions, err := ReadJSON(ctx, s, KeyQuestions, []models.Question{})
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, err
}

func LoadTurnState(ctx context.Context, s Store) (models.TurnState, error) {
	turn, err := ReadJSON(ctx, s, KeyTurnState, models.TurnState{Order: []string{}})
	turn.Normalize()
	return turn, err
}
