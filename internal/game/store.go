package game

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers games that do not exist as well as games owned by
	// another teacher; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrTeacherNotFound means the caller has no teacher record.
	ErrTeacherNotFound = errors.New("teacher record not found")
	// ErrUserNotFound means the authenticated subject has no user row.
	ErrUserNotFound = errors.New("user not found")
)

// Store is the persistence surface of the game workflow.
type Store interface {
	// UserRole returns the role stored for a user id.
	UserRole(ctx context.Context, userID string) (string, error)
	// ResolveTeacher maps a user id to its teacher record id.
	ResolveTeacher(ctx context.Context, userID string) (string, error)
	// ConfirmGame persists a draft: game row, question rows, answer rows,
	// correct_answer back-patch. All-or-nothing.
	ConfirmGame(ctx context.Context, teacherID string, draft GameDraft) (ConfirmResult, error)
	// ListGames returns the teacher's games, newest first.
	ListGames(ctx context.Context, teacherID string) ([]Game, error)
	// GetGame returns one owned game with questions and nested answers.
	GetGame(ctx context.Context, teacherID, gameID string) (GameDetail, error)
	// DeleteGame removes an owned game; dependent rows go with it.
	DeleteGame(ctx context.Context, teacherID, gameID string) error
}
