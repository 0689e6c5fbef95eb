package brain

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"
)

// Provider configurations

// ProviderSettings carries one vendor's values from the persisted
// configuration. Empty fields fall back to environment variables, then
// built-in defaults. Enabled gates whether the vendor is constructed.
type ProviderSettings struct {
	Enabled  bool
	APIKey   string
	Endpoint string
	Model    string
}

func ClaudeConfig(s ProviderSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:       "claude",
		Endpoint:   "https://api.anthropic.com/v1/messages",
		APIKey:     firstNonEmpty(s.APIKey, os.Getenv("ANTHROPIC_API_KEY")),
		Model:      firstNonEmpty(s.Model, getEnvOr("CLAUDE_MODEL", "claude-sonnet-4-5-20250929")),
		AuthHeader: "x-api-key",
		AuthPrefix: "",
		ExtraHeaders: map[string]string{
			"anthropic-version": "2023-06-01",
		},
		BuildBody:     buildClaudeBody,
		ParseResponse: parseClaudeResponse,
	}
}

func OpenAIConfig(s ProviderSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          "openai",
		Endpoint:      "https://api.openai.com/v1/chat/completions",
		APIKey:        firstNonEmpty(s.APIKey, os.Getenv("OPENAI_API_KEY")),
		Model:         firstNonEmpty(s.Model, getEnvOr("OPENAI_MODEL", "gpt-4o")),
		AuthHeader:    "Authorization",
		AuthPrefix:    "Bearer ",
		BuildBody:     buildOpenAIBody,
		ParseResponse: parseOpenAIResponse,
	}
}

func GeminiConfig(s ProviderSettings) *ProviderConfig {
	apiKey := firstNonEmpty(s.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	model := firstNonEmpty(s.Model, getEnvOr("GEMINI_MODEL", "gemini-2.5-flash"))

	return &ProviderConfig{
		Name:     "gemini",
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/" + model + ":generateContent",
		APIKey:   apiKey,
		Model:    model,
		// Key goes in the x-goog-api-key header, not the URL query.
		AuthHeader:    "x-goog-api-key",
		AuthPrefix:    "",
		BuildBody:     buildGeminiBody,
		ParseResponse: parseGeminiResponse,
	}
}

func OllamaConfig(s ProviderSettings) *ProviderConfig {
	endpoint := firstNonEmpty(s.Endpoint, os.Getenv("OLLAMA_HOST"), "http://localhost:11434")

	// Auto-detect model if not specified
	model := firstNonEmpty(s.Model, os.Getenv("OLLAMA_MODEL"))
	if model == "" {
		model = detectOllamaModel(endpoint)
	}

	return &ProviderConfig{
		Name:          "ollama",
		Endpoint:      endpoint + "/api/generate",
		Model:         model,
		AuthHeader:    "", // No auth needed
		BuildBody:     buildOllamaBody,
		ParseResponse: parseOllamaResponse,
	}
}

// detectOllamaModel queries Ollama for available models and picks one
func detectOllamaModel(endpoint string) string {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(endpoint + "/api/tags")
	if err != nil {
		return "" // Will mark provider as unavailable
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return ""
	}

	if len(tags.Models) == 0 {
		return ""
	}

	// Prefer instruct models for better chat/analysis
	for _, m := range tags.Models {
		if strings.Contains(strings.ToLower(m.Name), "instruct") {
			return m.Name
		}
	}

	return tags.Models[0].Name
}

// Body builders

func buildClaudeBody(cfg *ProviderConfig, req Request) map[string]any {
	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": maxTokensOr(req.MaxTokens, 1024),
		"messages":   []map[string]string{{"role": "user", "content": req.UserPrompt}},
	}
	if req.SystemPrompt != "" {
		body["system"] = req.SystemPrompt
	}
	return body
}

func buildOpenAIBody(cfg *ProviderConfig, req Request) map[string]any {
	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	return map[string]any{
		"model":                 cfg.Model,
		"max_completion_tokens": maxTokensOr(req.MaxTokens, 1024),
		"messages":              messages,
	}
}

func buildGeminiBody(cfg *ProviderConfig, req Request) map[string]any {
	contents := []map[string]any{
		{"role": "user", "parts": []map[string]string{{"text": req.UserPrompt}}},
	}

	body := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokensOr(req.MaxTokens, 1024),
		},
	}

	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	return body
}

func buildOllamaBody(cfg *ProviderConfig, req Request) map[string]any {
	prompt := req.UserPrompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.UserPrompt
	}
	return map[string]any{
		"model":  cfg.Model,
		"prompt": prompt,
		"stream": false,
	}
}

// Response parsers

func parseClaudeResponse(body []byte) (string, string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	var texts []string
	for _, c := range resp.Content {
		if c.Type == "text" {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n\n"), resp.Model, nil
}

func parseOpenAIResponse(body []byte) (string, string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, resp.Model, nil
	}
	return "", resp.Model, nil
}

func parseGeminiResponse(body []byte) (string, string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		return resp.Candidates[0].Content.Parts[0].Text, resp.ModelVersion, nil
	}
	return "", resp.ModelVersion, nil
}

func parseOllamaResponse(body []byte) (string, string, error) {
	var resp struct {
		Response string `json:"response"`
		Model    string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	return resp.Response, resp.Model, nil
}

// Helpers

func getEnvOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func maxTokensOr(v, defaultVal int) int {
	if v > 0 {
		return v
	}
	return defaultVal
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ProvidersConfig holds the per-vendor settings, in preference order.
type ProvidersConfig struct {
	Gemini ProviderSettings
	Claude ProviderSettings
	OpenAI ProviderSettings
	Ollama ProviderSettings
}

// CreateProviders builds every enabled, available provider in the order
// they should be tried. Persisted settings win over environment values.
func CreateProviders(cfg ProvidersConfig) []*HTTPProvider {
	vendors := []struct {
		settings ProviderSettings
		build    func(ProviderSettings) *ProviderConfig
	}{
		{cfg.Gemini, GeminiConfig},
		{cfg.Claude, ClaudeConfig},
		{cfg.OpenAI, OpenAIConfig},
		{cfg.Ollama, OllamaConfig},
	}

	var providers []*HTTPProvider
	for _, v := range vendors {
		if !v.settings.Enabled {
			continue
		}
		p := NewHTTPProvider(v.build(v.settings))
		if p.Available() {
			providers = append(providers, p)
		}
	}
	return providers
}

// CreateProviderByName creates a specific provider
func CreateProviderByName(name string, s ProviderSettings) *HTTPProvider {
	var cfg *ProviderConfig
	switch name {
	case "claude":
		cfg = ClaudeConfig(s)
	case "openai":
		cfg = OpenAIConfig(s)
	case "gemini":
		cfg = GeminiConfig(s)
	case "ollama":
		cfg = OllamaConfig(s)
	default:
		return nil
	}
	return NewHTTPProvider(cfg)
}
