package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg   config
		steps int64
		topK  int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "steps",
			Aliases:     []string{"n"},
			Usage:       "Number of reasoning steps per query",
			Value:       5,
			Sources:     cli.EnvVars("COGMAP_STEPS"),
			Destination: &steps,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of memory search results",
			Value:       3,
			Sources:     cli.EnvVars("COGMAP_TOP_K"),
			Destination: &topK,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive reasoning session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggingContext(ctx)

			sess, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Enter a query to generate reasoning. Commands: /search <query>, /stats, /clear, exit\n")

			for {
				line, err := rl.Readline()
				if err != nil { // io.EOF or readline.ErrInterrupt
					break
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				if err := handleChatLine(ctx, w, sess, line, int(steps), int(topK)); err != nil {
					fmt.Fprintf(w, "Error: %s\n", err.Error())
				}
			}

			fmt.Fprintf(w, "\nSession finished\n")
			return nil
		},
	}
}

func handleChatLine(ctx context.Context, w io.Writer, sess *session.Session, line string, steps, topK int) error {
	switch {
	case strings.HasPrefix(line, "/search "):
		query := strings.TrimSpace(strings.TrimPrefix(line, "/search "))
		if query == "" {
			return goerr.New("search query is required")
		}
		results, err := sess.Search(ctx, query, topK)
		if err != nil {
			return err
		}
		printSearchResults(w, results)
		return nil

	case line == "/stats":
		printStats(w, sess)
		return nil

	case line == "/clear":
		sess.Clear()
		fmt.Fprintf(w, "Mind map and memory cleared\n")
		return nil

	case line == "/graph":
		graph := sess.Graph()
		fmt.Fprintf(w, "Nodes: %d, Links: %d\n", len(graph.Nodes), len(graph.Edges))
		return nil

	case strings.HasPrefix(line, "/"):
		return goerr.New("unknown command", goerr.V("command", line))

	default:
		result, err := runReason(ctx, sess, line, steps, true)
		if err != nil {
			return err
		}
		for _, step := range result.Steps {
			fmt.Fprintf(w, "Step %d: %s\n", step.Step, step.Text)
		}
		fmt.Fprintf(w, "Generated %d reasoning steps\n", len(result.Steps))
		return nil
	}
}
