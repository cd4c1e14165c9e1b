package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient replays canned responses keyed by call order or by label
// prefix. Test double for the orchestrator; safe for concurrent use.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     []Request
}

// ScriptedResponse matches calls whose label starts with LabelPrefix (empty
// matches anything) and returns Text or Err.
type ScriptedResponse struct {
	LabelPrefix string
	Text        string
	Err         error
}

// NewScriptedClient creates a client that consumes the given responses in
// order, skipping entries whose label prefix does not match.
func NewScriptedClient(responses ...ScriptedResponse) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Generate returns the first unconsumed response matching the request label.
func (s *ScriptedClient) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	for i, r := range s.responses {
		if r.LabelPrefix == "" || hasPrefix(req.Label, r.LabelPrefix) {
			s.responses = append(s.responses[:i], s.responses[i+1:]...)
			return r.Text, r.Err
		}
	}
	return "", fmt.Errorf("scripted client: no response scripted for label %q", req.Label)
}

// Calls returns every request seen so far, in order.
func (s *ScriptedClient) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.calls))
	copy(out, s.calls)
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
