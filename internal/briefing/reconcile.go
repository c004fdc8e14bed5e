package briefing

import (
	"context"
	"fmt"
	"strings"
)

// PromptFunc assembles a fresh briefing prompt.
type PromptFunc func(ctx context.Context) (string, error)

// Plan is what gets sent to the AI service: the chat history to open the
// session with and the live message.
type Plan struct {
	History []Turn
	Prompt  string
}

// Reconcile decides which history and prompt to send for a request.
//
//   - empty history: the briefing prompt is the live message and the
//     history stays empty.
//   - history opening with a model turn: the briefing prompt is rebuilt and
//     prepended as a user turn, message is the live message.
//   - history opening with a user turn: history is sent unchanged, message
//     is the live message.
//
// prompt is only called in the first two cases. The input slice is never
// modified.
func Reconcile(ctx context.Context, history []Turn, message string, prompt PromptFunc) (Plan, error) {
	if len(history) == 0 {
		p, err := prompt(ctx)
		if err != nil {
			return Plan{}, err
		}
		return Plan{History: []Turn{}, Prompt: p}, nil
	}

	if err := ValidateHistory(history); err != nil {
		return Plan{}, err
	}
	if strings.TrimSpace(message) == "" {
		return Plan{}, invalid(ErrMessageRequired)
	}

	if history[0].Role == RoleModel {
		p, err := prompt(ctx)
		if err != nil {
			return Plan{}, err
		}
		out := make([]Turn, 0, len(history)+1)
		out = append(out, UserTurn(p))
		out = append(out, history...)
		return Plan{History: out, Prompt: message}, nil
	}

	return Plan{History: history, Prompt: message}, nil
}

// ValidateHistory checks that every turn has a known role and at least
// one part.
func ValidateHistory(history []Turn) error {
	for i, t := range history {
		if t.Role != RoleUser && t.Role != RoleModel {
			return invalid(fmt.Errorf("%w: turn %d has role %q", ErrInvalidTurn, i, t.Role))
		}
		if len(t.Parts) == 0 {
			return invalid(fmt.Errorf("%w: turn %d has no parts", ErrInvalidTurn, i))
		}
	}
	return nil
}

// TrimHistory bounds a history to max turns. The first turn, which carries
// the briefing, is always kept; the oldest turns after it are evicted two
// at a time so user and model turns stay paired. max <= 0 disables the
// bound. The input slice is never modified.
func TrimHistory(history []Turn, max int) []Turn {
	if max <= 0 || len(history) <= max {
		return history
	}

	drop := len(history) - max
	if drop%2 == 1 {
		drop++
	}
	if drop > len(history)-1 {
		drop = len(history) - 1
	}

	out := make([]Turn, 0, len(history)-drop)
	out = append(out, history[0])
	out = append(out, history[1+drop:]...)
	return out
}
