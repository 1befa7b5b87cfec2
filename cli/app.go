// Package cli implements the froster command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/internal/logging"
	"github.com/dirkpetersen/froster-go/internal/pathutil"
)

var log = logging.Module("froster/cli")

// nolint:gochecknoglobals
var (
	defaultColor = color.New()
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgHiRed)
	noteColor    = color.New(color.FgHiCyan)
)

// commandParent is implemented by App and commands that can have
// sub-commands, mirroring the teacher's cli/app.go.
type commandParent interface {
	Command(name, help string) *kingpin.CmdClause
}

// appServices are the methods of *App that command handlers are
// allowed to call.
type appServices interface {
	run(act func(ctx context.Context, rt *runtime) error) func(*kingpin.ParseContext) error
	stdout() io.Writer
	Stderr() io.Writer
}

// App holds per-invocation global flags and the registered subcommands.
type App struct {
	configPath string
	bucket     string
	profile    string
	region     string
	verbose    bool

	archive  commandArchive
	restore  commandRestore
	delete   commandDelete
	index    commandIndex
	reset    commandReset
	registry commandRegistry

	osExit       func(int)
	stdoutWriter io.Writer
	stderrWriter io.Writer
	rootctx      context.Context // nolint:containedctx
}

// NewApp returns a new App with color output wired to the terminal the
// way kopia's cli.NewApp does, falling back to plain writers when
// stdout/stderr are not a TTY (github.com/mattn/go-isatty).
func NewApp() *App {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())

	return &App{
		osExit:       os.Exit,
		stdoutWriter: colorable.NewColorableStdout(),
		stderrWriter: colorable.NewColorableStderr(),
		rootctx:      context.Background(),
		configPath:   defaultConfigPath(),
	}
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.config/froster/config.yaml"
	}

	return "froster-config.yaml"
}

func (c *App) stdout() io.Writer { return c.stdoutWriter }
func (c *App) Stderr() io.Writer { return c.stderrWriter }

// Attach registers every global flag and subcommand on app.
func (c *App) Attach(app *kingpin.Application) {
	app.Flag("config-file", "Path to the froster config file").Envar("FROSTER_CONFIG").StringVar(&c.configPath)
	app.Flag("bucket", "Override the configured S3 bucket").StringVar(&c.bucket)
	app.Flag("profile", "Override the configured AWS profile").StringVar(&c.profile)
	app.Flag("region", "Override the configured AWS region").StringVar(&c.region)
	app.Flag("verbose", "Enable verbose logging to stderr").Short('v').BoolVar(&c.verbose)

	c.archive.setup(c, app)
	c.restore.setup(c, app)
	c.delete.setup(c, app)
	c.index.setup(c, app)
	c.reset.setup(c, app)
	c.registry.setup(c, app)
}

// run wraps act with config loading, override application, logging
// setup and uniform error reporting, the way the teacher's
// maybeRepositoryAction wraps every command with repository open/close.
func (c *App) run(act func(ctx context.Context, rt *runtime) error) func(*kingpin.ParseContext) error {
	return func(*kingpin.ParseContext) error {
		ctx := c.rootContext()

		cfg, err := loadConfig(ctx, c.configPath)
		if err != nil {
			return c.fail(err)
		}

		if c.bucket != "" {
			cfg.Bucket = c.bucket
		}

		if c.profile != "" {
			cfg.Profile = c.profile
		}

		if c.region != "" {
			cfg.Region = c.region
		}

		rt, err := newRuntime(cfg)
		if err != nil {
			return c.fail(err)
		}

		if err := act(ctx, rt); err != nil {
			return c.fail(err)
		}

		return nil
	}
}

func (c *App) rootContext() context.Context {
	ctx := c.rootctx

	if c.verbose {
		ctx = logging.WithLogger(ctx, logging.ToWriter(c.stderrWriter))
	}

	return ctx
}

func (c *App) fail(err error) error {
	_, _ = errorColor.Fprintf(c.stderrWriter, "error: %v\n", err)
	c.osExit(1)

	return nil
}

func init() {
	kingpin.EnableFileExpansion = false
}

// batch tracks per-folder outcomes across a multi-folder command so one
// folder's failure does not stop the rest from being attempted (spec.md
// §7: every named folder is processed, and the command only exits
// nonzero once all of them have been tried).
type batch struct {
	total  int
	failed int
}

// fail records folder as failed and prints err to w; the caller's loop
// then continues to the next folder.
func (b *batch) fail(w io.Writer, folder string, err error) {
	b.total++
	b.failed++

	errorColor.Fprintf(w, "%s: %v\n", folder, err) //nolint:errcheck
}

// ok records folder as having completed without error.
func (b *batch) ok() { b.total++ }

// err returns a single aggregate error once every folder has been
// attempted, or nil if none failed.
func (b *batch) err() error {
	if b.failed == 0 {
		return nil
	}

	return errors.Errorf("%d of %d folder(s) failed", b.failed, b.total)
}

// checkNoCollision runs pathutil's recursive-collision detector across
// an entire multi-folder command's arguments, since a folder that is an
// ancestor or descendant of another named folder would otherwise be
// processed twice, or race with itself, once both are recursed into.
func checkNoCollision(folders []string) error {
	if pathutil.DetectRecursiveCollision(folders) {
		return errors.New("folder arguments overlap: one is an ancestor of another")
	}

	return nil
}
