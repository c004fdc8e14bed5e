package briefing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assembled = "\n## Daily Briefing Data\nAnnual Goals: Ship v2\n"

// countingPrompt returns a PromptFunc and a pointer to how often it ran.
func countingPrompt(text string, err error) (PromptFunc, *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		return text, err
	}, &calls
}

func TestReconcileEmptyHistorySendsBriefing(t *testing.T) {
	for _, message := range []string{"", "ignored"} {
		prompt, calls := countingPrompt(assembled, nil)

		plan, err := Reconcile(context.Background(), nil, message, prompt)
		require.NoError(t, err)

		assert.Empty(t, plan.History)
		assert.NotNil(t, plan.History)
		assert.Equal(t, assembled, plan.Prompt)
		assert.Equal(t, 1, *calls)
	}
}

func TestReconcileModelFirstPrependsBriefing(t *testing.T) {
	history := []Turn{
		ModelTurn("Good morning! Here is your briefing."),
		UserTurn("What is first?"),
		ModelTurn("Standup at 9."),
	}
	original := append([]Turn(nil), history...)
	prompt, calls := countingPrompt(assembled, nil)

	plan, err := Reconcile(context.Background(), history, "And after that?", prompt)
	require.NoError(t, err)

	require.Len(t, plan.History, 4)
	assert.Equal(t, RoleUser, plan.History[0].Role)
	assert.Equal(t, assembled, plan.History[0].Text())
	assert.Equal(t, original, plan.History[1:])
	assert.Equal(t, "And after that?", plan.Prompt)
	assert.Equal(t, 1, *calls)

	assert.Equal(t, original, history, "input history must not be modified")
}

func TestReconcileUserFirstIsIdentity(t *testing.T) {
	history := []Turn{
		UserTurn(assembled),
		ModelTurn("Good morning!"),
	}
	prompt, calls := countingPrompt("unused", nil)

	plan, err := Reconcile(context.Background(), history, "Thanks, what about tomorrow?", prompt)
	require.NoError(t, err)

	assert.Equal(t, history, plan.History)
	assert.Equal(t, "Thanks, what about tomorrow?", plan.Prompt)
	assert.Zero(t, *calls, "a well-formed history must not trigger a refetch")
}

func TestReconcileRequiresMessageForNonEmptyHistory(t *testing.T) {
	for _, first := range []Turn{UserTurn("brief"), ModelTurn("reply")} {
		prompt, calls := countingPrompt(assembled, nil)

		_, err := Reconcile(context.Background(), []Turn{first}, "  ", prompt)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMessageRequired)
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Zero(t, *calls)
	}
}

func TestReconcileRejectsMalformedTurns(t *testing.T) {
	tests := map[string][]Turn{
		"unknown role": {{Role: "assistant", Parts: []Part{{Text: "hi"}}}},
		"no parts":     {UserTurn("brief"), {Role: RoleModel}},
	}
	for name, history := range tests {
		t.Run(name, func(t *testing.T) {
			prompt, _ := countingPrompt(assembled, nil)
			_, err := Reconcile(context.Background(), history, "hello", prompt)
			assert.ErrorIs(t, err, ErrInvalidTurn)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestReconcilePropagatesPromptFailure(t *testing.T) {
	boom := errors.New("notion down")
	prompt, _ := countingPrompt("", boom)

	_, err := Reconcile(context.Background(), []Turn{ModelTurn("reply")}, "hello", prompt)
	assert.ErrorIs(t, err, boom)

	_, err = Reconcile(context.Background(), nil, "", prompt)
	assert.ErrorIs(t, err, boom)
}

func TestTrimHistory(t *testing.T) {
	history := []Turn{
		UserTurn("briefing"),
		ModelTurn("m1"),
		UserTurn("u2"),
		ModelTurn("m2"),
		UserTurn("u3"),
		ModelTurn("m3"),
	}

	assert.Equal(t, history, TrimHistory(history, 0), "zero disables the bound")
	assert.Equal(t, history, TrimHistory(history, 6))

	got := TrimHistory(history, 4)
	assert.Equal(t, []Turn{UserTurn("briefing"), ModelTurn("m2"), UserTurn("u3"), ModelTurn("m3")}, got)

	// An odd excess evicts a whole pair.
	got = TrimHistory(history, 5)
	assert.Equal(t, []Turn{UserTurn("briefing"), ModelTurn("m2"), UserTurn("u3"), ModelTurn("m3")}, got)

	got = TrimHistory(history, 1)
	assert.Equal(t, []Turn{UserTurn("briefing")}, got)

	assert.Len(t, history, 6, "input history must not be modified")
	assert.Equal(t, ModelTurn("m1"), history[1])
}

func TestTurnText(t *testing.T) {
	turn := Turn{Role: RoleUser, Parts: []Part{{Text: "Good "}, {Text: "morning"}}}
	assert.Equal(t, "Good morning", turn.Text())
	assert.Equal(t, "", Turn{Role: RoleUser}.Text())
}
