package game

import "errors"

var (
	ErrNoActiveQuestion = errors.New("no question is open")
	ErrWrongMode        = errors.New("action does not apply to the open question's mode")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrInvalidDirection = errors.New("joker direction must be above or below")
	ErrRoundNotFinished = errors.New("round is still in progress")
)
