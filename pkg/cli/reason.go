package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func reasonCommand() *cli.Command {
	var (
		cfg         config
		steps       int64
		searchQuery string
		topK        int64
		graphOut    string
		outputJSON  bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "steps",
			Aliases:     []string{"n"},
			Usage:       "Number of reasoning steps to generate",
			Value:       5,
			Sources:     cli.EnvVars("COGMAP_STEPS"),
			Destination: &steps,
		},
		&cli.StringFlag{
			Name:        "search",
			Aliases:     []string{"q"},
			Usage:       "Run a memory search for this query after reasoning",
			Sources:     cli.EnvVars("COGMAP_SEARCH"),
			Destination: &searchQuery,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of memory search results",
			Value:       3,
			Sources:     cli.EnvVars("COGMAP_TOP_K"),
			Destination: &topK,
		},
		&cli.StringFlag{
			Name:        "graph-out",
			Aliases:     []string{"g"},
			Usage:       "Write the mind map JSON payload to this path",
			Sources:     cli.EnvVars("COGMAP_GRAPH_OUT"),
			Destination: &graphOut,
		},
		&cli.BoolFlag{
			Name:        "json",
			Aliases:     []string{"j"},
			Usage:       "Output the result in JSON format",
			Sources:     cli.EnvVars("COGMAP_OUTPUT_JSON"),
			Destination: &outputJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "reason",
		Usage:     "Generate reasoning steps for a query and store them in vector memory",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return goerr.New("query argument is required")
			}

			ctx = cfg.loggingContext(ctx)

			sess, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}

			result, err := runReason(ctx, sess, query, int(steps), !outputJSON)
			if err != nil {
				return goerr.Wrap(err, "failed to generate reasoning")
			}

			if graphOut != "" {
				data, err := json.MarshalIndent(result.Graph, "", "  ")
				if err != nil {
					return goerr.Wrap(err, "failed to marshal graph payload")
				}
				if err := os.WriteFile(graphOut, data, 0644); err != nil {
					return goerr.Wrap(err, "failed to write graph payload", goerr.V("path", graphOut))
				}
			}

			if outputJSON {
				output := map[string]any{"reason": result}
				if searchQuery != "" {
					results, err := sess.Search(ctx, searchQuery, int(topK))
					if err != nil {
						return goerr.Wrap(err, "failed to search memory")
					}
					output["search"] = results
				}
				output["stats"] = sess.Stats()

				encoder := json.NewEncoder(c.Root().Writer)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			for _, step := range result.Steps {
				fmt.Fprintf(c.Root().Writer, "Step %d: %s (vector id %d)\n", step.Step, step.Text, step.RecordID)
			}

			if searchQuery != "" {
				results, err := sess.Search(ctx, searchQuery, int(topK))
				if err != nil {
					return goerr.Wrap(err, "failed to search memory")
				}
				printSearchResults(c.Root().Writer, results)
			}

			printStats(c.Root().Writer, sess)
			return nil
		},
	}
}

// runReason wraps the reasoning call with a progress spinner when the
// output is meant for a human.
func runReason(ctx context.Context, sess *session.Session, query string, steps int, showSpinner bool) (*session.ReasonResult, error) {
	if showSpinner {
		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " AI is thinking..."
		spin.Start()
		defer spin.Stop()
	}

	return sess.Reason(ctx, query, steps)
}
