// Package interpreter answers free-form messages that match no command
// and pulls booking entities out of them.
package interpreter

import (
	"context"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Entities struct {
	ServiceType string `json:"service_type,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Barber      string `json:"barber,omitempty"`
}

// Complete reports whether all four booking details were found.
func (e Entities) Complete() bool {
	return e.ServiceType != "" && e.Date != "" && e.Time != "" && e.Barber != ""
}

// Merge overlays the non-empty fields of other onto e.
func (e Entities) Merge(other Entities) Entities {
	if other.ServiceType != "" {
		e.ServiceType = other.ServiceType
	}
	if other.Date != "" {
		e.Date = other.Date
	}
	if other.Time != "" {
		e.Time = other.Time
	}
	if other.Barber != "" {
		e.Barber = other.Barber
	}
	return e
}

type Result struct {
	Text     string
	Entities Entities
}

type Interpreter interface {
	Interpret(ctx context.Context, text string, history []Message) (Result, error)
}

// Canned is the offline interpreter: a fixed, helpful reply and no
// entities.
type Canned struct {
	BusinessName string
}

func (c Canned) Interpret(_ context.Context, text string, _ []Message) (Result, error) {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "hi", "hello", "hey"):
		return Result{Text: "Hello! Welcome to " + c.name() + ". Send BOOK to make an appointment or HELP to see everything I can do."}, nil
	case containsAny(lower, "price", "cost", "how much"):
		return Result{Text: "Send SERVICES to see our services and prices."}, nil
	case containsAny(lower, "open", "hours", "close"):
		return Result{Text: "Send HOURS to see when we're open."}, nil
	case containsAny(lower, "thank"):
		return Result{Text: "You're welcome! See you soon at " + c.name() + "."}, nil
	}
	return Result{Text: "I'm not sure I understood that. Send HELP to see the available commands."}, nil
}

func (c Canned) name() string {
	if c.BusinessName == "" {
		return "the barbershop"
	}
	return c.BusinessName
}

func containsAny(s string, words ...string) bool {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	}) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	for _, w := range words {
		if strings.Contains(w, " ") && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
