package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/visitorhub/visitorhub/internal/brain"
	"github.com/visitorhub/visitorhub/internal/config"
	"github.com/visitorhub/visitorhub/internal/gateway"
	"github.com/visitorhub/visitorhub/internal/ingest"
	"github.com/visitorhub/visitorhub/internal/insight"
	"github.com/visitorhub/visitorhub/internal/logging"
	"github.com/visitorhub/visitorhub/internal/source"
	"github.com/visitorhub/visitorhub/internal/ui"
	"github.com/visitorhub/visitorhub/internal/visitor"
)

func main() {
	if err := logging.Init(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, cleanup, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open visitor source: %v", err)
	}
	defer cleanup()

	gw := gateway.New(src)

	manager := brain.NewManager()
	for _, p := range brain.CreateProviders(brain.ProvidersConfig{
		Gemini: providerSettings(cfg.Models.Gemini),
		Claude: providerSettings(cfg.Models.Claude),
		OpenAI: providerSettings(cfg.Models.OpenAI),
		Ollama: providerSettings(cfg.Models.Ollama),
	}) {
		manager.Add(p)
	}
	manager.SetPreferred(cfg.Models.Preferred)
	provider := manager.Available()
	if provider != nil {
		logging.Info("AI provider ready", "name", provider.Name())
	} else {
		logging.Warn("No AI provider available; insight requests will fall back")
	}

	app := ui.New(ui.Config{
		MarkRead: func(id string) tea.Cmd {
			return func() tea.Msg {
				err := gw.MarkRead(ctx, id)
				return ui.MarkReadDone{ID: id, Err: err}
			}
		},
		CopyText: func(value, label string) tea.Cmd {
			return func() tea.Msg {
				ok := gw.CopyText(value, label)
				return ui.Copied{Label: label, OK: ok}
			}
		},
		Insight: insight.New(provider),
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	ingestor := ingest.New(src)
	if err := ingestor.Start(ctx, program); err != nil {
		log.Fatalf("Failed to start ingest: %v", err)
	}

	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}

	cancel()
	ingestor.Wait()
}

// providerSettings maps persisted model settings onto one vendor's
// provider construction input.
func providerSettings(s config.ModelSettings) brain.ProviderSettings {
	return brain.ProviderSettings{
		Enabled:  s.Enabled,
		APIKey:   s.APIKey,
		Endpoint: s.Endpoint,
		Model:    s.Model,
	}
}

// openSource builds the visitor store selected by the configuration.
func openSource(ctx context.Context, cfg *config.Config) (source.Store, func(), error) {
	switch cfg.Source.Mode {
	case "demo":
		mem := source.NewMemory()
		seedDemo(mem)
		go simulateActivity(ctx, mem)
		return mem, func() {}, nil

	case "sqlite", "":
		path := cfg.Source.DBPath
		if path == "" {
			dataDir, err := config.DataDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolve data dir: %w", err)
			}
			path = filepath.Join(dataDir, "visitors.db")
		}
		db, err := source.OpenSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		return db, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}
}

// seedDemo fills the in-memory store with sample visitors.
func seedDemo(mem *source.Memory) {
	now := time.Now()
	samples := []visitor.Record{
		{
			ID: "v-1001", FirstName: "Dana", LastName: "Whitfield",
			Email: "dana.w@example.com", Phone: "+1 555 0101",
			Online: true, CurrentPage: "/checkout",
			City: "Austin", Area: "TX",
			CardNumber: "4111111111111111", Expiry: "09/27",
			Unread: true, UpdatedAt: now,
		},
		{
			ID: "v-1002", FirstName: "Marcus", LastName: "Lindqvist",
			Email: "marcus.l@example.com", Phone: "+46 70 123 4567",
			Online: true, CurrentPage: "/otp",
			City: "Stockholm", Area: "AB",
			CardNumber: "5500000000000004", Expiry: "01/28",
			LastOTP: "482913", OTPAttempts: []string{"110293", "482913"},
			Unread: true, UpdatedAt: now.Add(-2 * time.Minute),
		},
		{
			ID: "v-1003", FirstName: "Priya", LastName: "Raman",
			Email: "priya.r@example.com", Phone: "+91 98765 43210",
			Online: false, CurrentPage: "/landing",
			Area: "Karnataka",
			UpdatedAt: now.Add(-10 * time.Minute),
		},
		{
			ID: "v-1004", FirstName: "Tom", LastName: "Okafor",
			Email: "tom.o@example.com", Phone: "+234 802 555 0199",
			Online: true, CurrentPage: "/payment",
			City: "Lagos", Area: "LA",
			UpdatedAt: now.Add(-30 * time.Second),
		},
	}
	for _, rec := range samples {
		mem.Put(rec)
	}
}

// simulateActivity nudges the demo store so the dashboard shows live
// updates: presence flips and the occasional page change.
func simulateActivity(ctx context.Context, mem *source.Memory) {
	pages := []string{"/landing", "/payment", "/checkout", "/otp", "/confirmation"}
	ids := []string{"v-1001", "v-1002", "v-1003", "v-1004"}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id := ids[rng.Intn(len(ids))]
			fields := map[string]any{
				source.FieldOnline: rng.Intn(3) > 0,
			}
			if rng.Intn(2) == 0 {
				fields[source.FieldCurrentPage] = pages[rng.Intn(len(pages))]
			}
			if err := mem.Update(ctx, id, fields); err != nil {
				logging.Debug("demo update failed", "id", id, "error", err)
			}
		}
	}
}
