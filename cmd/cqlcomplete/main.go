package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/tentacle-scylla/cqlcomplete"
	"github.com/tentacle-scylla/cqlcomplete/internal/server"
	"github.com/tentacle-scylla/cqlcomplete/pkg/cluster"
	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/history"
	"github.com/tentacle-scylla/cqlcomplete/pkg/hover"
	"github.com/tentacle-scylla/cqlcomplete/pkg/prefs"
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "cqlcomplete",
		Usage:   "Statement-aware CQL completion for Cassandra/ScyllaDB",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default: ./cqlcomplete.yaml if present)",
				EnvVars: []string{"CQLCOMPLETE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "Schema snapshot (JSON) used instead of a live cluster",
			},
			&cli.StringFlag{
				Name:    "keyspace",
				Aliases: []string{"k"},
				Usage:   "Current keyspace",
			},
		},
		Commands: []*cli.Command{
			completeCmd(),
			hoverCmd(),
			keywordsCmd(),
			schemaCmd(),
			serveCmd(),
		},
	}
}

func completeCmd() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Aliases:   []string{"c"},
		Usage:     "Suggest what may follow the input at the cursor",
		ArgsUsage: "[CQL]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read CQL from file",
			},
			&cli.IntFlag{
				Name:  "cursor",
				Value: -1,
				Usage: "Cursor offset in bytes (default: end of input)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the full result as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			cursor := c.Int("cursor")
			if cursor < 0 || cursor > len(input) {
				cursor = len(input)
			}
			res := rt.engine.CompleteText(c.Context, input, cursor, rt.cfg.DefaultKeyspace)

			if c.Bool("json") {
				return writeResultJSON(c.App.Writer, res)
			}
			return writeResultText(c.App.Writer, c.App.ErrWriter, res)
		},
	}
}

func hoverCmd() *cli.Command {
	return &cli.Command{
		Name:      "hover",
		Usage:     "Describe the statement, keyword or schema object at the cursor",
		ArgsUsage: "[CQL]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read CQL from file",
			},
			&cli.IntFlag{
				Name:  "cursor",
				Value: -1,
				Usage: "Cursor offset in bytes (default: end of input)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			input, err := getInput(c)
			if err != nil {
				return err
			}

			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			cursor := c.Int("cursor")
			if cursor < 0 || cursor > len(input) {
				cursor = len(input)
			}
			info := hover.GetHoverInfo(&hover.HoverContext{
				Query:           input,
				Position:        cursor,
				Schema:          rt.fullSchema(c.Context),
				DefaultKeyspace: rt.cfg.DefaultKeyspace,
			})
			if info == nil {
				fmt.Fprintln(c.App.ErrWriter, "nothing to describe at the cursor")
				return nil
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err = fmt.Fprintln(c.App.Writer, info.Content)
			return err
		},
	}
}

func keywordsCmd() *cli.Command {
	return &cli.Command{
		Name:  "keywords",
		Usage: "List the statements the engine completes",
		Action: func(c *cli.Context) error {
			engine, err := cqlcomplete.New(schema.NewStaticSource(nil))
			if err != nil {
				return err
			}
			for _, phrase := range engine.Registry().LeadingKeywords() {
				fmt.Fprintln(c.App.Writer, phrase)
			}
			return nil
		},
	}
}

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Schema snapshot tools",
		Subcommands: []*cli.Command{
			{
				Name:  "dump",
				Usage: "Read the schema from the configured cluster and print it as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write to file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "system",
						Usage: "Include system keyspaces",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, log, err := loadConfig(c)
					if err != nil {
						return err
					}
					if !cfg.Cluster.Enabled() {
						return fmt.Errorf("schema dump needs cluster.hosts")
					}

					session, err := cluster.Connect(clusterConfig(cfg))
					if err != nil {
						return err
					}
					defer session.Close()

					s, err := cluster.LoadSchema(c.Context, session, c.Bool("system"))
					if err != nil {
						return err
					}
					log.Info().Int("keyspaces", len(s.Keyspaces)).Msg("schema loaded")

					if out := c.String("out"); out != "" {
						return s.SaveToJSON(out)
					}
					data, err := s.ToJSONIndent()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(data))
					return err
				},
			},
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the completion HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Listen address",
			},
		},
		Action: func(c *cli.Context) error {
			rt, err := setup(c)
			if err != nil {
				return err
			}
			defer rt.Close()

			storage, err := history.NewFileStorage(rt.cfg.History.Dir)
			if err != nil {
				return err
			}
			store := history.NewStore(storage,
				history.WithLimit(rt.cfg.History.Limit),
				history.WithLogger(rt.log.FieldLogger()),
				history.WithFlushObserver(rt.metrics.ObserveFlush),
			)

			srv, err := server.New(server.Config{
				Engine:          rt.engine,
				History:         store,
				Prefs:           prefs.NewStore(),
				Metrics:         rt.metrics,
				Logger:          rt.log,
				Schema:          rt.fullSchema(c.Context),
				Listen:          rt.cfg.Server.Listen,
				DefaultKeyspace: rt.cfg.DefaultKeyspace,
				ShutdownTimeout: rt.cfg.Server.ShutdownTimeout,
				FlushInterval:   rt.cfg.History.FlushInterval,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}
}

type resultJSON struct {
	complete.Result
	Errors []string `json:"errors,omitempty"`
}

func writeResultJSON(w io.Writer, res complete.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{Result: res, Errors: res.Errors.Strings()})
}

func writeResultText(w, errw io.Writer, res complete.Result) error {
	for _, err := range res.Errors {
		fmt.Fprintf(errw, "warning: %v\n", err)
	}
	if len(res.Items) == 0 {
		fmt.Fprintf(errw, "no suggestions (%s)\n", res.Outcome)
		if res.Hint != "" {
			fmt.Fprintln(errw, res.Hint)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Label, it.Kind, it.Detail)
	}
	return tw.Flush()
}

func getInput(c *cli.Context) (string, error) {
	if file := c.String("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}

	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}

	fmt.Fprintln(os.Stderr, "Enter CQL up to the cursor (Ctrl+D to finish):")
	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}
