package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/toyz/actioncheck/internal/cli"
	"github.com/toyz/actioncheck/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Exit codes
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitError       = 2
)

type app struct {
	v          *viper.Viper
	stdout     io.Writer
	stderr     io.Writer
	configFile string

	config      *cli.Config
	diagnostics *utils.DiagnosticSystem
	exitCode    int
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      cli.NewViper(),
		stdout: stdout,
		stderr: stderr,
	}
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.reportError(err)
		return exitError
	}
	return a.exitCode
}

// setup loads the configuration shared by every command. The tool config
// file is looked up in the project directory before paths are resolved.
func (a *app) setup() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	dir := a.v.GetString(cli.KeyProject)
	if dir == "" {
		dir = cli.NewProjectLocator().Locate(cwd)
	}
	if err := cli.ReadConfigFile(a.v, a.configFile, dir); err != nil {
		return err
	}

	config, err := cli.LoadConfig(a.v)
	if err != nil {
		return err
	}
	if err := config.Resolve(cwd); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	a.config = config
	a.diagnostics = utils.NewDiagnosticSystem(config.DiagnosticLevel())
	if a.stderr != os.Stderr {
		a.diagnostics.SetOutput(a.stderr)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.diagnostics.Verbose("Using settings from %s", used)
	}
	return nil
}

func (a *app) reportError(err error) {
	reporter := cli.NewErrorReporter(a.stderr, a.v.GetBool(cli.KeyVerbose), colorsFor(a.stderr))
	reporter.ReportError(err)
}

// colorsFor reports whether w is a terminal that accepts colors
func colorsFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && utils.ShouldUseColors(f)
}
