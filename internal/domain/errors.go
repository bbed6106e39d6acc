package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session is unknown or was abandoned.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when a pending result arrives after the session was torn down.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrNoWords marks the empty state: a category without vocabulary gets no session.
	ErrNoWords = errors.New("no words available for this category")
	// ErrVerificationFailed means the answer could not be verified remotely; the question stays open.
	ErrVerificationFailed = errors.New("couldn't verify the answer, try again")
	// ErrUnauthorized is returned when an operation needs a signed-in user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller lacks the role for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrWordNotFound indicates the term is not part of the vocabulary.
	ErrWordNotFound = errors.New("word not found")
	// ErrDuplicateWord means a term already belongs to another category; terms are unique vocabulary-wide.
	ErrDuplicateWord = errors.New("word already exists in another category")
	// ErrProfileNotFound indicates the user has not set up a profile yet.
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidReward   = errors.New("invalid reward")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidScore    = errors.New("invalid lesson score")
)
