package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/dynsql/pkg/core"
	"github.com/leapstack-labs/dynsql/pkg/sqlgen"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively render templates from the registry",
		Long: `Start an interactive prompt for rendering registry templates.

Input is a template name, optionally followed by a JSON object of
parameters:

  user_by_id {"user_id": 1}

A name:section form renders an auxiliary section. Dot-commands: .help,
.list, .reload, .quit. With --watch the registry document is reloaded
automatically whenever it changes on disk.`,
		Example: `  # Start the REPL
  dynsql repl

  # Reload the registry whenever the file changes
  dynsql repl --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the registry on file changes")

	return cmd
}

// replSession serializes access to the engine: the engine's compile cache
// is not safe for concurrent use, and the watcher goroutine reloads the
// registry under the same lock the prompt renders under.
type replSession struct {
	mu     sync.Mutex
	engine *sqlgen.Engine
	path   string
}

func (s *replSession) render(name, section string, params core.Params) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if section == "" {
		return s.engine.Render(name, params)
	}
	return s.engine.RenderSection(name, section, params)
}

func (s *replSession) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Registry().Names()
}

func (s *replSession) reload() error {
	data, err := os.ReadFile(s.path) //nolint:gosec // G304: path comes from user configuration
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.LoadRegistry(data); err != nil {
		return fmt.Errorf("failed to load registry %s: %w", s.path, err)
	}
	return nil
}

func runREPL(cmd *cobra.Command, watch bool) error {
	eng, cfg, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	session := &replSession{engine: eng, path: cfg.Registry}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to start registry watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()

		// Watch the directory: editors replace files on save, which
		// drops a watch registered on the file itself.
		if err := watcher.Add(filepath.Dir(cfg.Registry)); err != nil {
			return fmt.Errorf("failed to watch registry: %w", err)
		}
		go watchRegistry(cmd, watcher, session, cfg.Registry)
	}

	historyFile := filepath.Join(filepath.Dir(cfg.Registry), ".dynsql_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dynsql> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "DynSQL REPL (registry: %s)\n", cfg.Registry)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, session, line); quit {
				break
			}
			continue
		}

		if err := renderLine(cmd, session, line); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	return nil
}

// watchRegistry reloads the session's engine whenever the registry
// document is written or replaced.
func watchRegistry(cmd *cobra.Command, watcher *fsnotify.Watcher, session *replSession, path string) {
	target := filepath.Clean(path)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := session.reload(); err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nregistry reload failed: %v\n", err)
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nregistry reloaded: %s\n", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\nregistry watcher error: %v\n", err)
		}
	}
}

// renderLine parses "name[:section] [json-params]" and renders it.
func renderLine(cmd *cobra.Command, session *replSession, line string) error {
	ref := line
	paramsJSON := ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		ref = line[:i]
		paramsJSON = strings.TrimSpace(line[i:])
	}

	name, section, _ := strings.Cut(ref, ":")
	params, err := parseParams(paramsJSON, nil)
	if err != nil {
		return err
	}

	sql, err := session.render(name, section, params)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), sql)
	return nil
}

func handleDotCommand(cmd *cobra.Command, session *replSession, line string) (quit bool) {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(cmd.OutOrStdout())
	case ".list":
		for _, name := range session.names() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	case ".reload":
		if err := session.reload(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "registry reloaded")
	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "unknown command %s (try .help)\n", line)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, `Commands:
  <name> [json]           Render a template, e.g. user_by_id {"user_id": 1}
  <name>:<section> [json] Render an auxiliary section
  .list                   List registered template names
  .reload                 Reload the registry document
  .help                   Show this help
  .quit                   Exit the REPL
`)
}
