package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/adocxref/internal/config"
	ferrors "git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// Global carries state shared between subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"adocxref.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Rewrite cross references and write the modified documents"`
	Index IndexCmd `cmd:"" help:"Print the anchor index of every component-version"`
	Lint  LintCmd  `cmd:"" help:"Check anchors and references without writing anything"`
	Watch WatchCmd `cmd:"" help:"Rebuild whenever the content changes"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing and installs a logger until the
// configuration is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = newLogger(os.Stderr, config.LogFormatText, level)
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(w io.Writer, format config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// LoadConfig reads the configuration file and reinstalls the logger from
// its logging section. A missing file at the default path yields the
// defaults, so flags alone are enough to run.
func (c *CLI) LoadConfig(g *Global) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(c.Config); os.IsNotExist(err) && c.Config == config.DefaultPath {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	level := cfg.Logging.Level.Slog()
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = newLogger(os.Stderr, cfg.Logging.Format, level)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// SourceFlags select the content a command reads.
type SourceFlags struct {
	Source string `help:"Content directory (overrides source.dir)" type:"path"`
	Git    string `help:"Git repository to read content from (overrides source.git)" type:"path"`
	Rev    string `help:"Revision read from --git" placeholder:"REV"`
}

// Apply overrides the configured source.
func (s SourceFlags) Apply(cfg *config.Config) {
	switch {
	case s.Source != "":
		cfg.Source.Dir = s.Source
		cfg.Source.Git = ""
	case s.Git != "":
		cfg.Source.Git = s.Git
		cfg.Source.Dir = ""
		if cfg.Source.Revision == "" {
			cfg.Source.Revision = config.DefaultRevision
		}
	}
	if s.Rev != "" {
		cfg.Source.Revision = s.Rev
	}
}

// ExitError ends the process with Code without printing anything else.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps a command error to a process exit code, printing
// classified errors the way the error adapter formats them.
func ExitCode(err error, verbose bool, g *Global) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return ferrors.NewCLIErrorAdapter(verbose, g.logger()).Handle(err)
}
