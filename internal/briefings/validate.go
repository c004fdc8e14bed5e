package briefings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"github.com/jimdaga/first-sip/internal/briefing"
)

//go:embed schema/chat_request.json
var chatRequestSchema []byte

var (
	compileOnce  sync.Once
	compiled     *jsonschema.Schema
	compileError error
)

// chatRequest is the body of POST /api/briefing.
type chatRequest struct {
	History []briefing.Turn `json:"history"`
	Message string          `json:"message"`
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiled, compileError = compiler.Compile(chatRequestSchema)
		if compileError != nil {
			compileError = fmt.Errorf("failed to compile chat request schema: %w", compileError)
		}
	})
	return compiled, compileError
}

// decodeChatRequest validates body against the chat request schema and
// decodes it. An empty body is an empty request. Errors caused by the body
// wrap briefing.ErrInvalidRequest.
func decodeChatRequest(body []byte) (chatRequest, error) {
	var req chatRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	var instance interface{}
	if err := json.Unmarshal(body, &instance); err != nil {
		return req, fmt.Errorf("%w: malformed JSON: %w", briefing.ErrInvalidRequest, err)
	}

	s, err := schema()
	if err != nil {
		return req, err
	}

	result := s.Validate(instance)
	if !result.IsValid() {
		var errorMessages []string
		for field, evalErr := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		sort.Strings(errorMessages)
		return req, fmt.Errorf("%w: %s", briefing.ErrInvalidRequest, strings.Join(errorMessages, "; "))
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %w", briefing.ErrInvalidRequest, err)
	}
	return req, nil
}
