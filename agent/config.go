package agent

import (
	"errors"
	"fmt"

	"github.com/framechat/framechat/cache"
	"github.com/framechat/framechat/dataset"
	"github.com/framechat/framechat/engine"
	"github.com/framechat/framechat/security"
	"github.com/framechat/framechat/skills"
)

// ErrConfiguration indicates invalid agent configuration.
var ErrConfiguration = errors.New("invalid configuration")

// trainedContextLimit caps how many trained pairs and documents are
// folded into a single prompt.
const trainedContextLimit = 3

// Config controls Agent behavior. Connectors and Generator are
// required; everything else has working defaults.
type Config struct {
	// Connectors supply the datasets, in dfs slot order. Required,
	// non-empty.
	Connectors []dataset.Connector

	// Generator produces and repairs snippets. Required.
	Generator Generator

	// Engine configures snippet execution. Repair, Skills, Logger and
	// Environment entries are managed by the agent; set retry budget,
	// grouping enforcement and direct SQL here.
	Engine engine.Config

	// Security screens questions before generation. Defaults to the
	// standard denylist screen with no extra policy.
	Security *security.Screen

	// EnableCache turns on snippet caching keyed by data source, schema
	// fingerprints and normalized question.
	EnableCache bool

	// Cache is the snippet store. Defaults to an in-memory store when
	// EnableCache is set.
	Cache cache.Store

	// DataSource namespaces cache keys. Defaults to "local".
	DataSource string

	// Skills, when set, makes registered skills callable from snippets
	// and describes them in prompts.
	Skills *skills.Manager

	// Vector, when set, contributes trained pairs and documents to
	// prompts and receives Train calls.
	Vector VectorStore

	// MemorySize bounds the conversation window rendered into prompts.
	// Zero selects the default.
	MemorySize int

	// Logger receives diagnostic output. Defaults to a no-op logger.
	Logger engine.Logger
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if len(c.Connectors) == 0 {
		return fmt.Errorf("%w: at least one connector is required", ErrConfiguration)
	}
	if c.Generator == nil {
		return fmt.Errorf("%w: a Generator is required", ErrConfiguration)
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("%w: Engine.MaxRetries must be >= 0, got %d", ErrConfiguration, c.Engine.MaxRetries)
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.Security == nil {
		c.Security = security.NewScreen(nil)
	}
	if c.EnableCache && c.Cache == nil {
		c.Cache = cache.NewMemory()
	}
	if c.DataSource == "" {
		c.DataSource = "local"
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	if c.MemorySize <= 0 {
		c.MemorySize = defaultMemorySize
	}
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}
