package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"StoryStudio/internal/config"
	"StoryStudio/internal/content"
	"StoryStudio/internal/llm"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/research"
	"StoryStudio/internal/storage"
	"StoryStudio/internal/studio"
	"StoryStudio/internal/utils"
)

// app holds everything a command needs
type app struct {
	cfgStore *config.Store
	store    storage.SessionStore
	ledger   *storage.KeyFailureLog
	client   *llm.LLMClient
	svc      *studio.Service
}

func (a *app) cfg() *config.Config {
	return a.cfgStore.Get()
}

func (a *app) keys() llm.KeyConfig {
	cfg := a.cfg()
	return llm.KeyConfig{Google: cfg.GetGoogleKeys(), OpenAI: cfg.GetOpenAIKeys()}
}

// newApp loads the configuration and wires storage, the LLM client and the workflow service
func newApp(ctx context.Context) (*app, error) {
	cfgStore, err := config.NewStore(options.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cfgStore.Get()

	level := cfg.Logging.LogLevel
	if options.LogLevel != "" {
		level = options.LogLevel
	}
	if err := logging.InitializeLogging(level); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.ReplaceStandardLogger()

	if _, statErr := os.Stat(options.Config); statErr == nil {
		if err := cfgStore.Watch(ctx); err != nil {
			logging.Warn("Config hot reload disabled: %v", err)
		}
	}

	a := &app{cfgStore: cfgStore}

	store, err := storage.OpenSessionStore(ctx, cfg.GetDatabaseURL(), cfg.Sessions.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	a.store = store

	var recorder llm.FailureRecorder
	if cfg.GetDatabaseURL() != "" {
		db, err := storage.GetDatabase(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, err
		}
		a.ledger = storage.NewKeyFailureLog(db)
		recorder = a.ledger
	}
	a.client = llm.NewLLMClient(cfg, recorder)

	gen := content.NewGenerator(a.client, a.keys(), cfg.DefaultModel).WithKeySource(a.keys)

	opts := []studio.Option{studio.WithUploadChunkChars(cfg.Generation.UploadChunkChars)}
	if key := cfg.GetYouTubeAPIKey(); key != "" {
		researcher, err := research.NewYouTubeResearcher(ctx, key, cfg.Language)
		if err != nil {
			logging.Warn("YouTube research disabled: %v", err)
		} else {
			opts = append(opts, studio.WithResearch(researcher, cfg.YouTube.MaxResults))
		}
	}
	a.svc = studio.NewService(gen, store, opts...)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Error("Failed to close session store: %v", err)
		}
	}
	if err := storage.CloseDatabase(); err != nil {
		logging.Error("Failed to close database: %v", err)
	}
}

// session loads the session named by opt, applying the model override
func (a *app) session(ctx context.Context, opt SessionOptions) (*storage.SavedSession, error) {
	var sess *storage.SavedSession
	if opt.Session == "" || strings.EqualFold(opt.Session, "latest") {
		list, err := a.svc.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("no saved sessions: create one with \"new\" or \"upload\"")
		}
		sess = list[0]
	} else {
		var err error
		if sess, err = a.svc.Get(ctx, opt.Session); err != nil {
			return nil, err
		}
	}
	if opt.Model != "" {
		sess.Model = opt.Model
	}
	return sess, nil
}

// run executes fn with a configured app and a context cancelled by Ctrl-C
func run(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// withSession is run for commands that work on one session
func withSession(opt SessionOptions, fn func(ctx context.Context, a *app, sess *storage.SavedSession) error) error {
	return run(func(ctx context.Context, a *app) error {
		sess, err := a.session(ctx, opt)
		if err != nil {
			return err
		}
		logging.Debug("Using session %s (%q, model %q)", sess.ID, sess.BookTitle, sess.Model)
		return fn(ctx, a, sess)
	})
}

// progress adapts a console progress bar to the generators' callback
func progress(label string) content.ProgressFunc {
	pm := utils.NewProgressManager(os.Stdout, label)
	return func(done, total int, title string) {
		pm.UpdateProgress(done, total, utils.Truncate(title, 40))
	}
}
