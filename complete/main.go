// Command zsh-codex completes a zsh command line with a language model.
// The zle widget pipes $BUFFER on stdin and passes $CURSOR as the only
// argument; the text to insert at the cursor is written to stdout.
//
// Usage:
//
//	eval "$(zsh-codex init)"       # load the widget
//	zsh-codex init config           # print an example configuration
//	zsh-codex check                 # validate the configuration
//	print -rn -- 'ls' | zsh-codex 2 # complete by hand
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	codex "github.com/Paranoid-AF/zsh-codex"
	"github.com/Paranoid-AF/zsh-codex/cache"
	"github.com/Paranoid-AF/zsh-codex/generate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    codex.Environment

	// stdinIsTerminal reports whether stdin is attached to a terminal.
	stdinIsTerminal func() bool
	// newClient builds the adapter for the active section.
	newClient func(ctx context.Context, cfg *codex.Config) (generate.Client, error)

	configPath string
	service    string
	verbose    bool
}

func main() {
	env, err := codex.LoadEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "zsh-codex: %v\n", err)
		os.Exit(1)
	}

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    env,
		stdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		newClient: generate.Create,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func (a *app) run(ctx context.Context, args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "zsh-codex: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zsh-codex <cursor>",
		Short:         "Complete a zsh command line read from stdin",
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			a.setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.complete(cmd.Context(), args[0])
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/zsh_codex.ini)")
	flags.StringVar(&a.service, "service", "", "section to use instead of [service] service")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests and responses to stderr")

	root.AddCommand(a.initCmd(), a.checkCmd())
	return root
}

// setupLogging installs the default logger. Anything below warn is hidden
// unless asked for, since stderr lands in the line editor.
func (a *app) setupLogging() {
	level := slog.LevelWarn
	if a.verbose || a.env.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
}

func (a *app) loadConfig() (*codex.Config, error) {
	path := a.env.ResolveConfigPath(a.configPath)
	return codex.LoadConfig(path, a.env.ResolveService(a.service))
}

// openCache returns the completion cache when cache_ttl is set. Failures to
// open it only disable caching.
func (a *app) openCache(cfg *codex.Config) (*cache.Store, error) {
	ttl, err := cfg.Duration("cache_ttl", 0)
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		return nil, nil
	}
	path := filepath.Join(a.env.CacheDir(), cache.FileName)
	store, err := cache.Open(path, ttl)
	if err != nil {
		slog.Warn("completion cache disabled", "path", path, "error", err)
		return nil, nil
	}
	return store, nil
}

func (a *app) newEngine(cfg *codex.Config, client generate.Client) (*generate.Engine, error) {
	timeout, err := cfg.Duration("timeout", generate.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	store, err := a.openCache(cfg)
	if err != nil {
		return nil, err
	}
	return generate.NewEngine(client, generate.EngineOptions{
		Service: cfg.Service,
		Cache:   store,
		Timeout: timeout,
	}), nil
}

func (a *app) complete(ctx context.Context, cursorArg string) (err error) {
	cursor, err := strconv.Atoi(cursorArg)
	if err != nil {
		return fmt.Errorf("invalid cursor %q: %w", cursorArg, err)
	}
	if a.stdinIsTerminal() {
		return errors.New("stdin is a terminal, pipe the command line buffer in")
	}

	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	buffer := string(data)

	entry := transcriptEntry{
		Timestamp: time.Now(),
		Cursor:    cursor,
		Buffer:    buffer,
	}
	defer func() {
		if err != nil {
			entry.Error = err.Error()
		}
		a.recordTranscript(entry)
	}()

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	entry.Service = cfg.Service
	entry.APIType = cfg.APIType()

	client, err := a.newClient(ctx, cfg)
	if err != nil {
		return err
	}
	entry.Model = client.Model()

	engine, err := a.newEngine(cfg, client)
	if err != nil {
		return err
	}

	res, err := engine.Complete(ctx, buffer, cursor)
	if err != nil {
		return err
	}
	entry.Completion = res.Completion
	entry.Cached = res.Cached
	entry.DurationMS = res.Duration.Milliseconds()

	if _, err := io.WriteString(a.stdout, res.Completion); err != nil {
		return fmt.Errorf("writing completion: %w", err)
	}
	return nil
}

func (a *app) recordTranscript(e transcriptEntry) {
	if a.env.Transcript == "" {
		return
	}
	if err := appendTranscript(a.env.Transcript, e); err != nil {
		slog.Warn("failed to write transcript", "path", a.env.Transcript, "error", err)
	}
}
