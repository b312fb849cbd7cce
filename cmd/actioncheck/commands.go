package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/toyz/actioncheck/internal/cli"
)

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "actioncheck",
		Short: "Check Twig actionInput() routes against Craft controller actions",
		Long: `actioncheck verifies that every actionInput('route') call in the Twig
templates of a Craft CMS project names an existing controller action.

It reads the module and plugin handles from the application config, finds
the controllers through the Composer autoload table and reports each
template reference that matches no route.

Exit codes:
  0  every reference matches a route
  1  invalid references were found
  2  the check could not run`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "tool settings file (default: <project>/.actioncheck.yaml)")
	flags.String("project", "", "Craft project directory (default: nearest parent with composer.json)")
	flags.String("app-config", "", "application config declaring the modules (default: config/app.php)")
	flags.StringSlice("templates", nil, "template directories to scan (default: templates)")
	flags.StringToString("handle", nil, "override a handle's controller namespace, e.g. blog=modules\\blog\\controllers")
	flags.StringSlice("collected", nil, "JSON files of collected controller actions")
	flags.String("format", "", "report format: text, json or github")
	flags.Int("workers", 0, "template scanning workers (default: number of CPUs)")
	flags.BoolP("verbose", "v", false, "enable verbose output")
	flags.BoolP("quiet", "q", false, "only show errors and the report")
	flags.Bool("debug", false, "enable debug output")

	a.bind(flags.Lookup("project"), cli.KeyProject)
	a.bind(flags.Lookup("app-config"), cli.KeyConfigPath)
	a.bind(flags.Lookup("templates"), cli.KeyTemplatePaths)
	a.bind(flags.Lookup("handle"), cli.KeyHandleMap)
	a.bind(flags.Lookup("collected"), cli.KeyCollected)
	a.bind(flags.Lookup("format"), cli.KeyFormat)
	a.bind(flags.Lookup("workers"), cli.KeyWorkers)
	a.bind(flags.Lookup("verbose"), cli.KeyVerbose)
	a.bind(flags.Lookup("quiet"), cli.KeyQuiet)
	a.bind(flags.Lookup("debug"), cli.KeyDebug)

	root.AddCommand(
		a.checkCommand(),
		a.routesCommand(),
		a.handlesCommand(),
		a.collectCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func (a *app) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report actionInput() routes that match no controller action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if a.config.Watch {
				return a.watch(cmd.Context())
			}
			_, err := a.check(cmd.Context(), cli.NewChecker(a.config, a.diagnostics))
			return err
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "re-run the check when templates, controllers or config change")
	a.bind(cmd.Flags().Lookup("watch"), cli.KeyWatch)
	return cmd
}

// check runs one check and prints its report
func (a *app) check(ctx context.Context, checker *cli.Checker) (*cli.Report, error) {
	a.diagnostics.Section("Action route check")

	report, err := checker.Run(ctx)
	if err != nil {
		return nil, err
	}

	reporter, err := cli.NewReporter(a.config.Format, colorsFor(a.stdout))
	if err != nil {
		return nil, err
	}
	if err := reporter.Report(a.stdout, report); err != nil {
		return nil, err
	}

	s := report.Summary
	a.diagnostics.Summary("Check complete", map[string]interface{}{
		"Handles":           s.Handles,
		"Controllers":       s.Controllers,
		"Routes":            s.Routes,
		"Templates":         s.Templates,
		"References":        s.References,
		"Invalid routes":    s.Diagnostics,
		"Resolution issues": s.Issues,
		"Duration":          s.Duration.Round(time.Millisecond),
	})

	a.exitCode = exitOK
	if report.HasDiagnostics() {
		a.exitCode = exitDiagnostics
	}
	return report, nil
}

// watch checks once, then again whenever a relevant file changes, until ctx
// is cancelled.
func (a *app) watch(ctx context.Context) error {
	watcher, err := cli.NewWatcher(cli.DefaultDebounce, a.diagnostics)
	if err != nil {
		return err
	}
	defer watcher.Close()

	checker := cli.NewChecker(a.config, a.diagnostics)
	rerun := func(ctx context.Context) {
		report, err := a.check(ctx, checker)
		if err != nil {
			a.reportError(err)
			return
		}
		if err := watcher.Add(report.WatchDirs...); err != nil {
			a.diagnostics.Warn("Cannot watch %v: %v", report.WatchDirs, err)
		}
	}

	roots := append([]string{filepath.Dir(a.config.ConfigPath)}, a.config.TemplatePaths...)
	if err := watcher.Add(roots...); err != nil {
		return err
	}
	rerun(ctx)

	a.diagnostics.Info("Watching for changes, press Ctrl+C to stop")
	err = watcher.Run(ctx, func(ctx context.Context, changed []string) {
		a.diagnostics.Section(fmt.Sprintf("%d file(s) changed", len(changed)))
		a.diagnostics.Indent()
		for _, path := range changed {
			a.diagnostics.List("%s", path)
		}
		a.diagnostics.Unindent()
		checker.Invalidate(changed)
		rerun(ctx)
	})
	a.exitCode = exitOK
	return err
}

func (a *app) routesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every route the project's controllers accept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			analysis, err := cli.NewChecker(a.config, a.diagnostics).Analyze(cmd.Context())
			if err != nil {
				return err
			}

			routes := analysis.Routes.Routes()
			if a.config.Format == "json" {
				return writeJSON(a.stdout, routes)
			}
			for _, route := range routes {
				fmt.Fprintln(a.stdout, route)
			}
			return nil
		},
	}
}

func (a *app) handlesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "handles",
		Short: "List module and plugin handles with their controller namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			analysis, err := cli.NewChecker(a.config, a.diagnostics).Analyze(cmd.Context())
			if err != nil {
				return err
			}

			handles := analysis.Snapshot.Handles()
			if a.config.Format == "json" {
				return writeJSON(a.stdout, handles)
			}
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, handle := range handles.Handles() {
				fmt.Fprintf(w, "%s\t%s\n", strconv.Quote(handle), handles[handle])
			}
			return w.Flush()
		},
	}
}

func (a *app) collectCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "collect <source-dir>...",
		Short: "Write the controller actions declared under the given directories as collected data",
		Long: `collect parses every PHP file under the given directories and writes the
controller actions it finds in the format accepted by --collected. Use it to
snapshot controllers that live outside the autoloaded namespaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}

			roots := make([]string, len(args))
			for i, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				roots[i] = abs
			}

			actions, err := cli.NewChecker(a.config, a.diagnostics).Collect(cmd.Context(), roots)
			if err != nil {
				return err
			}

			if output == "" {
				return cli.WriteCollected(a.stdout, actions)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := cli.WriteCollected(f, actions); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.diagnostics.Success("Wrote %d controller(s) to %s", len(actions), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "actioncheck %s\n", version)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
