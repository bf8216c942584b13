package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/cogmap/pkg/adapter"
	"github.com/m-mizutani/cogmap/pkg/agent"
	"github.com/m-mizutani/cogmap/pkg/memory"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Vector memory
	dimension int64
	embedder  string

	// Agents
	agentKind      string
	templatesPath  string
	geminiProject  string
	geminiLocation string
	geminiModel    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("COGMAP_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("COGMAP_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.IntFlag{
			Name:        "dimension",
			Aliases:     []string{"d"},
			Usage:       "Embedding dimension of the vector memory",
			Value:       memory.DefaultDimension,
			Sources:     cli.EnvVars("COGMAP_DIMENSION"),
			Destination: &cfg.dimension,
		},
		&cli.StringFlag{
			Name:        "embedder",
			Usage:       "Embedding generator (hash, random)",
			Value:       "hash",
			Sources:     cli.EnvVars("COGMAP_EMBEDDER"),
			Destination: &cfg.embedder,
		},
	}
}

// llmFlags returns flags for agent configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "agent",
			Aliases:     []string{"a"},
			Usage:       "Reasoning agent (mock, gemini)",
			Value:       "mock",
			Sources:     cli.EnvVars("COGMAP_AGENT"),
			Destination: &cfg.agentKind,
		},
		&cli.StringFlag{
			Name:        "templates",
			Usage:       "Path to a YAML file with mock reasoning templates",
			Sources:     cli.EnvVars("COGMAP_TEMPLATES"),
			Destination: &cfg.templatesPath,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("COGMAP_GEMINI_PROJECT"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("COGMAP_GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini generative model name",
			Sources:     cli.EnvVars("COGMAP_GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// loggingContext installs a logger built from the config into ctx and
// as the process default.
func (cfg *config) loggingContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, logging.ParseFormat(cfg.logFormat), os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newEmbedder creates the configured embedding generator
func (cfg *config) newEmbedder() (memory.Embedder, error) {
	dim := int(cfg.dimension)
	switch cfg.embedder {
	case "hash", "":
		return memory.NewHashEmbedder(dim), nil
	case "random":
		return memory.NewRandomEmbedder(dim, uint64(time.Now().UnixNano())), nil
	default:
		return nil, goerr.New("unknown embedder", goerr.V("embedder", cfg.embedder))
	}
}

// newStore creates a new vector memory instance
func (cfg *config) newStore() (*memory.Store, error) {
	embedder, err := cfg.newEmbedder()
	if err != nil {
		return nil, err
	}

	store, err := memory.New(embedder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create vector memory")
	}
	return store, nil
}

// newMock creates the template-based agent, honoring a templates file
func (cfg *config) newMock() (*agent.Mock, error) {
	if cfg.templatesPath == "" {
		return agent.NewMock(), nil
	}

	templates, err := agent.LoadTemplates(cfg.templatesPath)
	if err != nil {
		return nil, err
	}
	return agent.NewMock(agent.WithTemplates(templates)), nil
}

// newAgent creates the configured reasoning agent
func (cfg *config) newAgent(ctx context.Context) (agent.Agent, error) {
	mock, err := cfg.newMock()
	if err != nil {
		return nil, err
	}

	switch cfg.agentKind {
	case "mock", "":
		return mock, nil
	case "gemini":
		if cfg.geminiProject == "" {
			return nil, goerr.New("gemini-project is required for the gemini agent")
		}

		var opts []adapter.GeminiOption
		if cfg.geminiModel != "" {
			opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
		}
		gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini client")
		}
		return agent.NewGemini(gemini, agent.WithFallback(mock)), nil
	default:
		return nil, goerr.New("unknown agent", goerr.V("agent", cfg.agentKind))
	}
}

// newSession creates a session with its own store and the configured agent
func (cfg *config) newSession(ctx context.Context) (*session.Session, error) {
	a, err := cfg.newAgent(ctx)
	if err != nil {
		return nil, err
	}
	store, err := cfg.newStore()
	if err != nil {
		return nil, err
	}
	return session.New(a, store), nil
}
