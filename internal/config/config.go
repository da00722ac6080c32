// Package config loads the engine's TOML configuration file (spec.md §6)
// plus the secrets an optional external ranker endpoint needs. Following
// the teacher's convention of pulling secrets from the environment via
// godotenv, only the non-secret, structural settings live in the TOML
// file; an API key for ai.endpoint is read from the environment (which
// cmd/aipinyin fills from a .env file in the working directory via
// godotenv.Load(), exactly as the teacher's cmd/server/main.go does).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EngineMode selects whether the async neural path participates at all.
type EngineMode string

const (
	ModeAI   EngineMode = "ai"
	ModeDict EngineMode = "dict"
)

const (
	defaultTopK      = 9
	defaultFontSize  = 14
	defaultOpacity   = 255
	defaultConfigRel = "aipinyin.toml"
)

// aiConfig mirrors the ai.* keys in spec.md §6.
type aiConfig struct {
	TopK         int    `toml:"top_k"`
	Rerank       bool   `toml:"rerank"`
	Endpoint     string `toml:"endpoint"`
	SystemPrompt string `toml:"system_prompt"`
}

// uiConfig mirrors the ui.* keys. Both fields are visual-only, not part
// of the core, but are still parsed and validated since they round-trip
// through the same config file a real candidate-window renderer reads.
type uiConfig struct {
	FontSize int `toml:"font_size"`
	Opacity  int `toml:"opacity"`
}

// dictConfig mirrors the dict.* keys.
type dictConfig struct {
	Extra []string `toml:"extra"`
}

// engineConfig mirrors the engine.* keys.
type engineConfig struct {
	Mode string `toml:"mode"`
}

// fileConfig is the raw TOML document shape.
type fileConfig struct {
	Engine engineConfig `toml:"engine"`
	AI     aiConfig     `toml:"ai"`
	UI     uiConfig     `toml:"ui"`
	Dict   dictConfig   `toml:"dict"`
}

// Config is the engine's fully resolved, validated configuration: the
// TOML file's recognized keys (spec.md §6) plus the filesystem paths the
// core's persisted-state and dictionary-source contracts depend on, all
// resolved relative to the baseDir passed to Load. Load does not look up
// the executable's directory: an empty baseDir means the current working
// directory.
type Config struct {
	Mode           EngineMode
	AITopK         int
	AIRerank       bool
	AIEndpoint     string
	AISystemPrompt string
	AIAPIKey       string

	UIFontSize int
	UIOpacity  int

	DictExtra []string

	BaseDir        string
	DictPath       string
	DictDir        string
	DictCachePath  string
	UserDictPath   string
	AICachePath    string
	PluginAuthPath string
	VocabDir       string
}

// Load reads the TOML config file at path (defaulting to
// "aipinyin.toml" in baseDir when path is empty), validates
// it, and resolves the fixed set of persisted-state paths (spec.md §6)
// relative to baseDir. A missing config file is not an error: the engine
// starts with documented defaults (dict-only mode) rather than refusing
// to run, matching spec.md §7's preference for degrading over failing.
func Load(path, baseDir string) (Config, error) {
	if baseDir == "" {
		var err error
		baseDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("determine base directory: %w", err)
		}
	}
	if path == "" {
		path = filepath.Join(baseDir, defaultConfigRel)
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if decodeErr := toml.Unmarshal(data, &fc); decodeErr != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, decodeErr)
		}
	case os.IsNotExist(err):
		// No config file: proceed with zero-value fileConfig, filled in by
		// applyDefaults below.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Config{
		Mode:           resolveMode(fc.Engine.Mode),
		AITopK:         fc.AI.TopK,
		AIRerank:       fc.AI.Rerank,
		AIEndpoint:     fc.AI.Endpoint,
		AISystemPrompt: fc.AI.SystemPrompt,
		AIAPIKey:       firstNonEmptyEnv("AIPINYIN_AI_API_KEY", "OPENAI_API_KEY"),
		UIFontSize:     fc.UI.FontSize,
		UIOpacity:      fc.UI.Opacity,
		DictExtra:      fc.Dict.Extra,
		BaseDir:        baseDir,
	}
	applyDefaults(&cfg)
	resolvePaths(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveMode(raw string) EngineMode {
	if raw == string(ModeAI) {
		return ModeAI
	}
	return ModeDict
}

func applyDefaults(cfg *Config) {
	if cfg.AITopK <= 0 {
		cfg.AITopK = defaultTopK
	}
	if cfg.UIFontSize <= 0 {
		cfg.UIFontSize = defaultFontSize
	}
	if cfg.UIOpacity <= 0 {
		cfg.UIOpacity = defaultOpacity
	}
}

func resolvePaths(cfg *Config) {
	cfg.DictPath = filepath.Join(cfg.BaseDir, "dict.txt")
	cfg.DictDir = filepath.Join(cfg.BaseDir, "dict")
	cfg.DictCachePath = filepath.Join(cfg.BaseDir, "dict", "cache.db")
	cfg.UserDictPath = filepath.Join(cfg.BaseDir, "user_dict.txt")
	cfg.AICachePath = filepath.Join(cfg.BaseDir, "ai_cache.txt")
	cfg.PluginAuthPath = filepath.Join(cfg.BaseDir, "plugins.txt")
	cfg.VocabDir = cfg.BaseDir
}

// validate enforces the range constraints spec.md §6 documents for the
// scalar ui.* keys; everything else either has a safe default or is
// inherently unconstrained (a free-form string).
func (cfg Config) validate() error {
	if cfg.UIOpacity < 0 || cfg.UIOpacity > 255 {
		return fmt.Errorf("ui.opacity must be within 0..=255, got %d", cfg.UIOpacity)
	}
	if cfg.AIEndpoint != "" && cfg.AIAPIKey == "" {
		// Not fatal: ai.endpoint without a key degrades to ModelUnavailable
		// per spec.md §7, it does not refuse to start.
		return nil
	}
	return nil
}

func firstNonEmptyEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
