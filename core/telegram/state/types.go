// Package state keeps per-user conversation sessions for multi-step flows.
// A session is a small value object {step, collected fields} keyed by the
// Telegram user id; backends are an in-process map and Redis.
package state

import "context"

// Step identifies a finite-state-machine step in the checkout conversation.
type Step string

const (
	// StepIdle indicates there is no active conversation with the user.
	StepIdle Step = "idle"
	// StepFullName awaits the customer's full name.
	StepFullName Step = "full_name"
	// StepPhone awaits the customer's phone number.
	StepPhone Step = "phone"
	// StepAddress awaits the delivery address.
	StepAddress Step = "address"
)

// Session stores the conversation step and fields collected so far.
type Session struct {
	Step     Step   `json:"step"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Idle reports whether the session carries no active conversation.
func (s Session) Idle() bool {
	return s.Step == "" || s.Step == StepIdle
}

// Store persists conversation sessions keyed by user id.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Put(ctx context.Context, userID int64, s Session) error
	Clear(ctx context.Context, userID int64) error
}
