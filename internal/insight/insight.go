// Package insight coordinates the AI summary of the current visitor set.
//
// The coordinator is an explicit two-state machine, Idle and Requesting,
// with single-flight semantics: one request in flight at a time, entry
// rejected while busy. On entry it takes an immutable projection of the
// record set, so stream updates during the round trip cannot alter what
// was sent. The produced insight persists until dismissed or replaced;
// incoming snapshots never clear it.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/visitorhub/visitorhub/internal/brain"
	"github.com/visitorhub/visitorhub/internal/logging"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

// Fallback is stored as the insight when the provider fails or returns
// an empty response. A failure is always visible in the insight panel,
// never silent.
const Fallback = "Could not generate an analysis right now. Please try again later."

// maxTokens bounds the length of the requested analysis.
const maxTokens = 512

var (
	// ErrBusy rejects re-entry while a request is in flight.
	ErrBusy = errors.New("insight request already in flight")

	// ErrNoRecords guards the empty set: no provider call is made.
	ErrNoRecords = errors.New("no visitors to analyze")
)

// State of the coordinator.
type State int

const (
	Idle State = iota
	Requesting
)

// Coordinator owns the insight state machine. All methods must be called
// from the event loop; only Job.Run is safe to call elsewhere.
type Coordinator struct {
	provider brain.Provider
	state    State
	insight  string
}

// New creates a Coordinator using the given provider. A nil provider is
// allowed; every request then resolves to the fallback message.
func New(provider brain.Provider) *Coordinator {
	return &Coordinator{provider: provider}
}

// Job is one prepared request: the projection is frozen at Begin time.
type Job struct {
	provider brain.Provider
	prompt   string
}

// Begin validates preconditions and enters Requesting. The returned Job
// carries a projection of the records as they are right now; later
// mutations of the live set do not affect it.
func (c *Coordinator) Begin(records []visitor.Record) (*Job, error) {
	if c.state == Requesting {
		return nil, ErrBusy
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	prompt, err := buildPrompt(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build insight prompt: %w", err)
	}

	c.state = Requesting
	return &Job{provider: c.provider, prompt: prompt}, nil
}

// Run executes the provider round trip. Any failure - no provider,
// transport error, empty response - resolves to the fallback text, so
// the caller always has something to store.
func (j *Job) Run(ctx context.Context) string {
	if j.provider == nil || !j.provider.Available() {
		logging.Warn("Insight requested with no provider available")
		return Fallback
	}

	resp, err := j.provider.Generate(ctx, brain.Request{
		UserPrompt: j.prompt,
		MaxTokens:  maxTokens,
	})
	if err != nil {
		logging.Error("Insight generation failed", "provider", j.provider.Name(), "error", err)
		return Fallback
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		logging.Warn("Insight provider returned empty response", "provider", j.provider.Name(), "model", resp.Model)
		return Fallback
	}

	logging.Info("Insight generated", "provider", j.provider.Name(), "model", resp.Model, "length", len(text))
	return text
}

// Prompt exposes the frozen prompt, mainly for tests.
func (j *Job) Prompt() string {
	return j.prompt
}

// Complete stores the result, replacing any prior insight, and returns
// to Idle. A response arriving after Dismiss still lands; that stale
// overwrite is tolerated behavior.
func (c *Coordinator) Complete(text string) {
	c.insight = text
	c.state = Idle
}

// Dismiss clears the insight. It does not cancel an in-flight request.
func (c *Coordinator) Dismiss() {
	c.insight = ""
}

// State returns the current machine state.
func (c *Coordinator) State() State {
	return c.state
}

// Busy reports whether a request is in flight.
func (c *Coordinator) Busy() bool {
	return c.state == Requesting
}

// Insight returns the current insight text and whether one is present.
func (c *Coordinator) Insight() (string, bool) {
	return c.insight, c.insight != ""
}

// projection is the compact per-record view submitted to the provider.
type projection struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	HasCard  bool   `json:"hasCard"`
	HasOTP   bool   `json:"hasOtp"`
	Location string `json:"location"`
	Page     string `json:"page"`
}

// buildPrompt renders the fixed instructional template around the
// projected data.
func buildPrompt(records []visitor.Record) (string, error) {
	data := make([]projection, len(records))
	for i, r := range records {
		data[i] = projection{
			ID:       r.ID,
			Status:   r.StatusLabel(),
			HasCard:  r.HasCard(),
			HasOTP:   r.HasOTP(),
			Location: r.Location(),
			Page:     r.CurrentPage,
		}
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Analyze this live visitor data for a web dashboard.
Total visitors: %d.
Data: %s

Provide a professional, concise analysis.
Focus on:
1. Conversion health (how many added cards vs entered OTP).
2. Geographical hotspots.
3. Actionable alerts (e.g., users stuck on specific pages).
Keep it under 150 words.`, len(records), encoded), nil
}
