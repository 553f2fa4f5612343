package main

import (
	"context"
	"errors"

	"StoryStudio/internal/config"
	"StoryStudio/internal/llm"
	"StoryStudio/internal/llm/providers"
	"StoryStudio/internal/logging"
)

// CheckKeysCmd reports the parsed key pools
type CheckKeysCmd struct {
	Live  bool   `long:"live" description:"send a one-word request with each key"`
	Reset string `long:"reset" description:"clear the failure history of a provider (gemini, openai or all)"`
}

func (c *CheckKeysCmd) Execute(_ []string) error {
	return run(func(ctx context.Context, a *app) error {
		cfg := a.cfg()
		pools := []struct {
			provider llm.Provider
			keys     []string
			model    string
			single   func(string) llm.KeyConfig
		}{
			{
				provider: llm.ProviderGemini,
				keys:     providers.ParseKeyPool(cfg.GetGoogleKeys(), providers.MatchGeminiKey),
				model:    geminiProbeModel(cfg),
				single:   func(k string) llm.KeyConfig { return llm.KeyConfig{Google: k} },
			},
			{
				provider: llm.ProviderOpenAI,
				keys:     providers.ParseKeyPool(cfg.GetOpenAIKeys(), nil),
				model:    "gpt-4o-mini",
				single:   func(k string) llm.KeyConfig { return llm.KeyConfig{OpenAI: k} },
			},
		}

		for _, pool := range pools {
			logging.Println("%s: %d key(s)", pool.provider, len(pool.keys))
			for i, key := range pool.keys {
				status := ""
				if c.Live {
					status = " " + probe(ctx, a, pool.model, pool.single(key))
				}
				logging.Println("  %d. %s%s", i+1, providers.MaskKey(key), status)
			}
		}

		if a.ledger == nil {
			if c.Reset != "" {
				return errors.New("no failure history without a database (set database_url)")
			}
			return nil
		}
		if c.Reset != "" {
			provider := c.Reset
			if provider == "all" {
				provider = ""
			}
			if err := a.ledger.Reset(ctx, provider); err != nil {
				return err
			}
			logging.Println("Cleared failure history for %s", c.Reset)
		}
		stats, err := a.ledger.Stats(ctx)
		if err != nil {
			return err
		}
		if len(stats) > 0 {
			logging.Println("Recorded failures:")
		}
		for _, st := range stats {
			logging.Println("  %s %s: %d failure(s), last HTTP %d at %s: %s",
				st.Provider, st.MaskedKey, st.Failures, st.LastStatus, st.LastFailed.Format("2006-01-02 15:04"), st.LastError)
		}
		return nil
	})
}

func geminiProbeModel(cfg *config.Config) string {
	if llm.ResolveProvider(cfg.DefaultModel) == llm.ProviderGemini {
		return cfg.DefaultModel
	}
	return config.DefaultFlashModel
}

func probe(ctx context.Context, a *app, model string, keys llm.KeyConfig) string {
	_, err := a.client.GenerateText(ctx, llm.GenerationRequest{Model: model, Prompt: "Reply with the single word: ok"}, keys)
	if err == nil {
		return "ok"
	}
	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		if llm.IsRetryable(err) {
			return "limited: " + pe.Error()
		}
		return "failed: " + pe.Error()
	}
	return "failed: " + err.Error()
}
