package translator

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spektr-org/askdata/catalog"
	"github.com/spektr-org/askdata/engine"
)

// ============================================================================
// TRANSLATOR — AI boundary for natural language → Intent
// ============================================================================
// The Translator is the ONLY component that calls an external AI service.
// It receives the column names + user instruction, returns an Intent.
// It NEVER sees raw data.
// ============================================================================

// Provider names.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config holds translator configuration.
type Config struct {
	Provider string        // "openrouter" (default) or "gemini"
	APIKey   string        // AI provider API key (consumer's key)
	Model    string        // Model name (empty = provider default)
	Endpoint string        // API endpoint override (empty = default)
	Timeout  time.Duration // HTTP timeout (0 = 30s)
}

// Provider defaults, used when Config leaves Model or Endpoint empty.
const (
	DefaultGeminiModel        = "gemini-2.5-flash-lite"
	DefaultGeminiEndpoint     = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultOpenRouterModel    = "mistralai/mistral-7b-instruct:free"
	DefaultOpenRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"
)

// DefaultGeminiConfig returns a Config with sensible Gemini defaults.
func DefaultGeminiConfig(apiKey string) Config {
	return Config{
		Provider: ProviderGemini,
		APIKey:   apiKey,
		Model:    DefaultGeminiModel,
		Endpoint: DefaultGeminiEndpoint,
	}
}

// DefaultOpenRouterConfig returns a Config with sensible OpenRouter defaults.
func DefaultOpenRouterConfig(apiKey string) Config {
	return Config{
		Provider: ProviderOpenRouter,
		APIKey:   apiKey,
		Model:    DefaultOpenRouterModel,
		Endpoint: DefaultOpenRouterEndpoint,
	}
}

// completer sends one system + user exchange and returns the raw reply text.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Translator turns instructions into Intents using a hosted model.
// It satisfies pipeline.Parser.
type Translator struct {
	provider string
	llm      completer
	catalog  string
}

// New creates a Translator for cfg.Provider.
func New(cfg Config) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translator: API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: cfg.Timeout}

	t := &Translator{
		provider: strings.ToLower(cfg.Provider),
		catalog:  catalog.DescribeAll(),
	}
	switch t.provider {
	case "", ProviderOpenRouter:
		t.provider = ProviderOpenRouter
		t.llm = newOpenRouter(cfg, client)
	case ProviderGemini:
		t.llm = newGemini(cfg, client)
	default:
		return nil, fmt.Errorf("translator: unknown provider %q", cfg.Provider)
	}
	return t, nil
}

// WithCatalog grounds the prompt on a custom registry.
func (t *Translator) WithCatalog(r *catalog.Registry) *Translator {
	t.catalog = r.DescribeAll()
	return t
}

// Parse converts instruction into an Intent. Transport and decoding failures
// are reported as upstream errors.
func (t *Translator) Parse(ctx context.Context, instruction string, columns []string) (engine.Intent, error) {
	system := BuildPrompt(t.catalog, columns)

	log.Printf("🔄 AskData Translator: provider=%s instruction=\"%s\" columns=%d",
		t.provider, truncate(instruction, 80), len(columns))

	raw, err := t.llm.complete(ctx, system, instruction)
	if err != nil {
		return engine.Intent{}, engine.Upstream(err, "%s API error", t.provider)
	}

	intent, err := ParseIntent(raw)
	if err != nil {
		log.Printf("⚠️ AskData Translator: could not decode reply: %v", err)
		return engine.Intent{}, err
	}

	log.Printf("✅ AskData Translator: operation=%s target=%s group_by=%v",
		intent.Operation, intent.TargetColumn, intent.GroupBy)
	return intent, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
