package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/glossary/internal/config"
	"github.com/phrazzld/glossary/internal/domain"
	"github.com/phrazzld/glossary/internal/platform/console"
	"github.com/phrazzld/glossary/internal/platform/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// streams are the process's standard streams, replaceable in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// rootOptions hold the global flags.
type rootOptions struct {
	configFile string
	logLevel   string
	dataDir    string
	noColor    bool
}

// overrides maps the flags the user actually set to config keys.
func (o *rootOptions) overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		out["log.level"] = o.logLevel
	}
	if flags.Changed("data-dir") {
		out["glossary.data_dir"] = o.dataDir
	}
	if flags.Changed("no-color") && o.noColor {
		out["console.color"] = false
	}
	return out
}

func newRootCommand(s streams) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "glossary [file]",
		Short: "Personal terminology store with search and quizzes",
		Long: `glossary keeps keywords and their definitions.

Without a file, the data directory is searched for glossaries. A raw import
file is parsed once and then read from its .csv cache next to it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd, s)
			if err != nil {
				return err
			}
			defer app.console.Close()

			path, err := app.resolveFile(args)
			if err != nil {
				return err
			}
			if err := app.open(cmd.Context(), path); err != nil {
				return err
			}
			return newREPL(app).run(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file (default ./glossary.yaml when present)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory searched for glossaries")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newPrintCommand(opts, s))
	rootCmd.AddCommand(newSearchCommand(opts, s))
	rootCmd.AddCommand(newRandomCommand(opts, s))
	rootCmd.AddCommand(newConfigCommand(s))

	return rootCmd
}

// setup loads the configuration, the logger and the console and wires the
// application.
func (o *rootOptions) setup(cmd *cobra.Command, s streams) (*application, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: o.configFile,
		Overrides:  o.overrides(cmd),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Log, s.err)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Debug("configuration loaded",
		"data_dir", cfg.Glossary.DataDir,
		"atomic_writes", cfg.Storage.AtomicWrites,
		"autosave_history", cfg.Storage.AutosaveHistory)

	con, err := newConsole(s, console.Options{Color: cfg.Console.Color})
	if err != nil {
		return nil, err
	}

	app, err := newApplication(cfg, log, con, afero.NewOsFs(), nil)
	if err != nil {
		_ = con.Close()
		return nil, err
	}
	return app, nil
}

// newConsole uses line editing when both stdin and stdout are terminals.
func newConsole(s streams, opts console.Options) (*console.Console, error) {
	if isTerminal(s.in) && isTerminal(s.out) {
		return console.NewTerminalConsole(s.out, opts)
	}
	return console.NewLineConsole(s.in, s.out, opts), nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// openForCommand sets up the application and opens the glossary for a one-shot
// command.
func (o *rootOptions) openForCommand(cmd *cobra.Command, s streams, args []string) (*application, error) {
	app, err := o.setup(cmd, s)
	if err != nil {
		return nil, err
	}

	path, err := app.resolveFile(args)
	if err == nil {
		err = app.open(cmd.Context(), path)
	}
	if err != nil {
		_ = app.console.Close()
		return nil, err
	}
	return app, nil
}

func newPrintCommand(opts *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "print [file]",
		Short: "List every keyword with its definitions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openForCommand(cmd, s, args)
			if err != nil {
				return err
			}
			defer app.console.Close()

			return oneShot(cmd.Context(), app, func(r *repl) error {
				return r.print(cmd.Context(), "")
			})
		},
	}
}

func newSearchCommand(opts *rootOptions, s streams) *cobra.Command {
	var (
		file       string
		definition bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search keywords, or definitions with --def",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileArgs []string
			if file != "" {
				fileArgs = []string{file}
			}
			app, err := opts.openForCommand(cmd, s, fileArgs)
			if err != nil {
				return err
			}
			defer app.console.Close()

			kind := domain.SearchKeyword
			if definition {
				kind = domain.SearchDefinition
			}
			return oneShot(cmd.Context(), app, func(r *repl) error {
				return r.search(cmd.Context(), kind.String()+" "+args[0])
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "glossary file to search")
	cmd.Flags().BoolVar(&definition, "def", false, "search definitions instead of keywords")
	return cmd
}

// oneShot runs fn against the open glossary and then saves anything left
// unsaved, like a search logged with autosave off or a cache that could not be
// written during the import.
func oneShot(ctx context.Context, app *application, fn func(*repl) error) error {
	if err := fn(newREPL(app)); err != nil {
		return err
	}
	if !app.glossary.IsDirty() {
		return nil
	}
	return app.glossary.Save(ctx)
}

func newRandomCommand(opts *rootOptions, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "random [file]",
		Short: "Show a random keyword",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openForCommand(cmd, s, args)
			if err != nil {
				return err
			}
			defer app.console.Close()

			return oneShot(cmd.Context(), app, func(r *repl) error {
				return r.random(cmd.Context(), "")
			})
		},
	}
}

func newConfigCommand(s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigName + ".yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s Default configuration written to %s\n", console.InfoMarker, path)
			return nil
		},
	})

	return cmd
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context, args []string, s streams) int {
	rootCmd := newRootCommand(s)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.err)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(s.err, "%s %v\n", console.WarnMarker, err)
		slog.Debug("command failed", "error", err)
		return 1
	}
	return 0
}
