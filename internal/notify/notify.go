// Package notify is the haptic-style feedback port: a fire-and-forget
// signal on user actions, categorized by weight. Implementations must
// never block or fail the caller.
package notify

import "log"

// Category is the feedback weight of a user action.
type Category int

const (
	Light Category = iota
	Medium
	Heavy
	Success
	Error
)

func (c Category) String() string {
	switch c {
	case Light:
		return "light"
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Notifier delivers a feedback signal. Best effort; no return value.
type Notifier interface {
	Notify(Category)
}

// Silent discards all signals.
type Silent struct{}

func (Silent) Notify(Category) {}

// Logger writes each signal to the standard logger. Useful for headless
// runs and debugging.
type Logger struct{}

func (Logger) Notify(c Category) {
	log.Printf("feedback: %s", c)
}

// Func adapts a function to the Notifier interface.
type Func func(Category)

func (f Func) Notify(c Category) {
	if f != nil {
		f(c)
	}
}
