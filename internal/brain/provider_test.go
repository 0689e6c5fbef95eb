package brain

import (
	"context"
	"testing"
)

type stubProvider struct {
	name      string
	available bool
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) Generate(ctx context.Context, req Request) (Response, error) {
	return Response{Content: "ok", Model: s.name}, nil
}

func TestManagerPreferredProvider(t *testing.T) {
	m := NewManager()
	m.Add(&stubProvider{name: "gemini", available: true})
	m.Add(&stubProvider{name: "claude", available: true})
	m.SetPreferred("claude")

	p := m.Available()
	if p == nil || p.Name() != "claude" {
		t.Errorf("expected the preferred provider, got %v", p)
	}
}

func TestManagerFallsBackToFirstAvailable(t *testing.T) {
	m := NewManager()
	m.Add(&stubProvider{name: "gemini", available: false})
	m.Add(&stubProvider{name: "claude", available: true})
	m.SetPreferred("gemini")

	p := m.Available()
	if p == nil || p.Name() != "claude" {
		t.Errorf("expected fallback to the first available provider, got %v", p)
	}
}

func TestManagerNoneAvailable(t *testing.T) {
	m := NewManager()
	m.Add(&stubProvider{name: "gemini", available: false})

	if p := m.Available(); p != nil {
		t.Errorf("expected nil with nothing available, got %v", p)
	}
}

func TestManagerListAvailable(t *testing.T) {
	m := NewManager()
	m.Add(&stubProvider{name: "gemini", available: true})
	m.Add(&stubProvider{name: "claude", available: false})
	m.Add(&stubProvider{name: "ollama", available: true})

	names := m.ListAvailable()
	if len(names) != 2 {
		t.Fatalf("expected 2 available providers, got %d", len(names))
	}
	if names[0] != "gemini" || names[1] != "ollama" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestParseResponses(t *testing.T) {
	tests := []struct {
		name  string
		parse func([]byte) (string, string, error)
		body  string
		want  string
	}{
		{
			name:  "claude",
			parse: parseClaudeResponse,
			body:  `{"content":[{"type":"text","text":"hello"}],"model":"claude-sonnet"}`,
			want:  "hello",
		},
		{
			name:  "openai",
			parse: parseOpenAIResponse,
			body:  `{"choices":[{"message":{"content":"hello"}}],"model":"gpt-4o"}`,
			want:  "hello",
		},
		{
			name:  "gemini",
			parse: parseGeminiResponse,
			body:  `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}],"modelVersion":"gemini-2.5-flash"}`,
			want:  "hello",
		},
		{
			name:  "ollama",
			parse: parseOllamaResponse,
			body:  `{"model":"llama3","response":"hello"}`,
			want:  "hello",
		},
	}

	for _, tt := range tests {
		content, _, err := tt.parse([]byte(tt.body))
		if err != nil {
			t.Errorf("%s: parse failed: %v", tt.name, err)
			continue
		}
		if content != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, content)
		}
	}
}

func TestParseResponsesEmpty(t *testing.T) {
	// Empty result arrays parse cleanly to empty content; the caller
	// treats empty content as a failed generation.
	for name, parse := range map[string]func([]byte) (string, string, error){
		"claude": parseClaudeResponse,
		"openai": parseOpenAIResponse,
		"gemini": parseGeminiResponse,
	} {
		body := `{"content":[],"choices":[],"candidates":[]}`
		content, _, err := parse([]byte(body))
		if err != nil {
			t.Errorf("%s: unexpected parse error: %v", name, err)
		}
		if content != "" {
			t.Errorf("%s: expected empty content, got %q", name, content)
		}
	}
}

func TestParseResponsesMalformed(t *testing.T) {
	if _, _, err := parseClaudeResponse([]byte(`not json`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
