// Package store persists the three board records: the team list, the
// question list and the turn state. Values are opaque JSON to the backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Read when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Key names one persisted record.
type Key string

const (
	KeyTeams     Key = "teams"
	KeyQuestions Key = "questions"
	KeyTurnState Key = "turnState"
)

// Store is a best-effort key to JSON store. Writes to different keys are
// independent; no transaction spans keys.
type Store interface {
	Read(ctx context.Context, key Key) (json.RawMessage, error)
	Write(ctx context.Context, key Key, value json.RawMessage) error
	Close() error
}
