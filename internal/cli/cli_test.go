package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/streams"
)

type call struct {
	history []briefing.Turn
	message string
}

// scriptedResponder replies "reply N" and echoes a transcript the way the
// briefing service does.
type scriptedResponder struct {
	calls  []call
	failOn map[int]error
}

func (s *scriptedResponder) Respond(_ context.Context, history []briefing.Turn, message string) (briefing.Exchange, error) {
	n := len(s.calls)
	s.calls = append(s.calls, call{history: history, message: message})
	if err := s.failOn[n]; err != nil {
		return briefing.Exchange{}, err
	}

	reply := "reply " + string(rune('0'+n))
	prompt := message
	if len(history) == 0 {
		prompt = "assembled prompt"
	}
	transcript := append(append([]briefing.Turn{}, history...), briefing.UserTurn(prompt), briefing.ModelTurn(reply))
	return briefing.Exchange{Reply: reply, Transcript: transcript}, nil
}

func (s *scriptedResponder) Generate(ctx context.Context) (briefing.Exchange, error) {
	return s.Respond(ctx, nil, "")
}

func TestRunChatCarriesHistory(t *testing.T) {
	r := &scriptedResponder{}
	var out bytes.Buffer

	err := RunChat(context.Background(), r, strings.NewReader("What first?\n\nAnd then?\nexit\n"), &out, plainRenderer)
	require.NoError(t, err)

	require.Len(t, r.calls, 3, "blank lines are skipped and exit stops the loop")
	assert.Empty(t, r.calls[0].history)
	assert.Equal(t, "What first?", r.calls[1].message)
	assert.Len(t, r.calls[1].history, 2)
	assert.Equal(t, briefing.RoleUser, r.calls[1].history[0].Role)
	assert.Equal(t, "And then?", r.calls[2].message)
	assert.Len(t, r.calls[2].history, 4)

	assert.Contains(t, out.String(), "reply 0")
	assert.Contains(t, out.String(), "reply 2")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunChatInitialFailure(t *testing.T) {
	r := &scriptedResponder{failOn: map[int]error{0: errors.New("notion down")}}
	var out bytes.Buffer

	err := RunChat(context.Background(), r, strings.NewReader("hello\n"), &out, plainRenderer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion down")
	assert.Len(t, r.calls, 1)
}

func TestRunChatFollowUpFailureContinues(t *testing.T) {
	r := &scriptedResponder{failOn: map[int]error{1: errors.New("quota exceeded")}}
	var out bytes.Buffer

	err := RunChat(context.Background(), r, strings.NewReader("first\nsecond\nquit\n"), &out, plainRenderer)
	require.NoError(t, err)

	require.Len(t, r.calls, 3)
	assert.Contains(t, out.String(), "quota exceeded")
	assert.Len(t, r.calls[2].history, 2, "a failed turn leaves history unchanged")
}

func TestRunChatEndsOnEOF(t *testing.T) {
	r := &scriptedResponder{}
	var out bytes.Buffer

	require.NoError(t, RunChat(context.Background(), r, strings.NewReader("only question"), &out, plainRenderer))
	assert.Len(t, r.calls, 2)
}

func TestIsExit(t *testing.T) {
	assert.True(t, isExit("exit"))
	assert.True(t, isExit("QUIT"))
	assert.False(t, isExit("exit now"))
}

func TestRunOnce(t *testing.T) {
	r := &scriptedResponder{}
	var out bytes.Buffer

	require.NoError(t, RunOnce(context.Background(), r, &out, plainRenderer, true))
	assert.Contains(t, out.String(), "assembled prompt")
	assert.Contains(t, out.String(), "reply 0")

	r = &scriptedResponder{failOn: map[int]error{0: errors.New("boom")}}
	assert.Error(t, RunOnce(context.Background(), r, &out, plainRenderer, false))
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	handler := PrintEvent(&out, plainRenderer, time.UTC)

	err := handler(streams.BriefingEvent{
		BriefingID:  42,
		Source:      "scheduled",
		Briefing:    "Good morning!",
		GeneratedAt: time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Briefing #42 (scheduled, 8/1/2025, 6:00:00 AM)")
	assert.Contains(t, out.String(), "Good morning!\n")
}

func TestPlainRenderer(t *testing.T) {
	assert.Equal(t, "hello\n", plainRenderer("hello\n\n"))
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"chat", "once", "watch"})
	assert.NotNil(t, root.RunE)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}
