// Command aipinyin runs the engine as a headless host process: it loads
// the dictionary and persisted state, builds the engine, and serves the
// httpview demo/debug transport over HTTP. A real IME host (the macOS
// input-method shell, the Windows TSF host) would embed the engine
// package directly and drive it from its own hook thread instead of
// going through this binary at all; this command exists for local
// development and for the SSE demo client, exactly as the teacher's
// cmd/server stood in front of its own engine package.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/aipinyin/engine/internal/aicache"
	"github.com/aipinyin/engine/internal/config"
	"github.com/aipinyin/engine/internal/dict"
	"github.com/aipinyin/engine/internal/engine"
	"github.com/aipinyin/engine/internal/history"
	"github.com/aipinyin/engine/internal/pipeline"
	"github.com/aipinyin/engine/internal/plugin"
	"github.com/aipinyin/engine/internal/ranker"
	"github.com/aipinyin/engine/internal/userdict"
	"github.com/aipinyin/engine/internal/view/httpview"
	"github.com/aipinyin/engine/internal/vocab"
)

const (
	historyCapacity    = 20
	defaultOpenAIModel = "gpt-4o-mini"
)

func main() {
	_ = godotenv.Load()

	logger := newLogger()

	baseDir, err := os.Getwd()
	if err != nil {
		logger.Fatalf("determine base directory: %v", err)
	}

	cfg, err := config.Load("", baseDir)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	d, err := dict.LoadWithCache(cfg.DictPath, cfg.DictCachePath, logger)
	if err != nil {
		logger.Fatalf("load dictionary: %v", err)
	}
	if added, err := d.LoadExtra(cfg.DictDir, cfg.DictExtra); err != nil {
		logger.Printf("dict: some extra word lists failed to load: %v", err)
	} else if added > 0 {
		logger.Printf("dict: merged %d entries from extra word lists", added)
	}

	users, err := userdict.Open(cfg.UserDictPath, logger)
	if err != nil {
		logger.Fatalf("open user dictionary: %v", err)
	}
	aiCache, err := aicache.Open(cfg.AICachePath, logger)
	if err != nil {
		logger.Fatalf("open AI cache: %v", err)
	}
	hist := history.New(historyCapacity)

	plugins, err := plugin.Open(cfg.PluginAuthPath)
	if err != nil {
		logger.Fatalf("open plugin registry: %v", err)
	}

	scorer, voc := buildRanker(cfg, logger)

	pipe := pipeline.New(logger)
	v := httpview.New(logger)

	// A real synthetic-input backend is platform-specific (CGEventPost on
	// macOS, SendInput on Windows) and lives in the embedding host, not in
	// this module; the demo binary computes commits but never injects them.
	eng := engine.New(cfg, d, users, aiCache, hist, scorer, voc, pipe, plugins, v, nil, logger)
	defer eng.Close()

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	srv := &http.Server{Addr: addr, Handler: v.Router()}
	go func() {
		logger.Printf("aipinyin demo server listening on %s (mode=%s)", addr, cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("serve: %v", err)
		}
	}()

	waitForShutdown(logger, srv)
}

// buildRanker constructs the neural scorer/vocab pair the engine needs
// for AI mode. Without ai.endpoint configured there is no on-device model
// to fall back to (spec.md treats the neural model as an external
// collaborator, §1), so the engine simply runs dict-only.
func buildRanker(cfg config.Config, logger *log.Logger) (ranker.Scorer, *vocab.Vocab) {
	if cfg.Mode != config.ModeAI || cfg.AIEndpoint == "" {
		return nil, nil
	}

	voc, err := vocab.Load(cfg.VocabDir)
	if err != nil {
		logger.Printf("ranker: vocab unavailable, falling back to dict-only: %v", err)
		return nil, nil
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultOpenAIModel
	}
	scorer, err := ranker.NewExternalScorer(cfg.AIEndpoint, cfg.AIAPIKey, model, cfg.AISystemPrompt, voc, logger)
	if err != nil {
		logger.Printf("ranker: external scorer unavailable, falling back to dict-only: %v", err)
		return nil, nil
	}
	return scorer, voc
}

// newLogger picks a log-flag style depending on whether stdout is an
// interactive terminal (short, human-friendly flags) or piped into a log
// collector (full timestamp, matching the teacher's own preference for
// verbose flags outside a TTY), and tags every line with a per-process
// session id so concurrent restarts in the same log stream stay
// distinguishable.
func newLogger() *log.Logger {
	flags := log.LstdFlags | log.Lmsgprefix
	if isatty.IsTerminal(os.Stdout.Fd()) {
		flags = log.Ltime
	}
	sessionID := uuid.NewString()[:8]
	return log.New(os.Stdout, "aipinyin["+sessionID+"] ", flags)
}

func waitForShutdown(logger *log.Logger, srv *http.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
