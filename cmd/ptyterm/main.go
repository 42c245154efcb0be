// Command ptyterm wires the terminal core (internal/session,
// internal/eventloop, internal/hook, internal/keymap) to the
// illustrative tcell renderer in internal/democell. It is a reference
// host, not part of the core's public contract (spec §1/§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/ptyterm/internal/config"
	"github.com/dshills/ptyterm/internal/config/tomlload"
	"github.com/dshills/ptyterm/internal/corelog"
	"github.com/dshills/ptyterm/internal/democell"
	"github.com/dshills/ptyterm/internal/eventloop"
	"github.com/dshills/ptyterm/internal/hook"
	"github.com/dshills/ptyterm/internal/keymap"
	"github.com/dshills/ptyterm/internal/localecho"
	"github.com/dshills/ptyterm/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ptyterm:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "path to a TOML config file")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("stdin is not a terminal")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	log := corelog.New("ptyterm")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	palette, err := cfg.Theme.BuildPalette()
	if err != nil {
		return fmt.Errorf("building palette: %w", err)
	}

	hooks := hook.NewExecutor()
	defer hooks.Close()
	if source, err := cfg.Hooks.Assemble(os.ReadFile); err != nil {
		return fmt.Errorf("assembling hook scripts: %w", err)
	} else if source != "" {
		if err := hooks.Load(source); err != nil {
			return fmt.Errorf("loading hook scripts: %w", err)
		}
	}

	configured, err := configuredBindings(cfg.Keybindings)
	if err != nil {
		return fmt.Errorf("keybindings: %w", err)
	}
	registry, warnings := keymap.NewRegistry(nil, configured, keymap.DefaultBuiltins())
	for _, w := range warnings {
		log.Warn(ctx, "keybinding conflict", "detail", w.String())
	}

	sink, err := democell.New(palette)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	defer sink.Close()

	spawn := sessionFactory(cfg, sink, hooks)
	first, err := spawn()
	if err != nil {
		return fmt.Errorf("spawning initial session: %w", err)
	}
	defer first.Close()

	input := make(chan eventloop.InputEvent)
	go sink.PollEvents(ctx, input)

	loop := eventloop.New(eventloop.Options{
		Sessions: []*session.Session{first},
		Spawn:    spawn,
		Registry: registry,
		Hooks:    hooks,
		Sink:     sink,
		Input:    input,
	})

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return tomlload.Load(path)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ptyterm", "config.toml")
}

// sessionFactory closes over cfg, sink, and hooks so every spawned tab
// (the initial one and every ActionNewTab-triggered one) shares the
// same shell/geometry defaults and the same hook executor.
func sessionFactory(cfg config.Config, sink *democell.Sink, hooks *hook.Executor) eventloop.SessionFactory {
	return func() (*session.Session, error) {
		cols, rows := sink.Size()
		return session.New(session.Options{
			Shell:           cfg.Shell.DefaultShell,
			WorkDir:         cfg.Shell.WorkingDir,
			Env:             cfg.Shell.Env,
			Rows:            uint16(rows),
			Cols:            uint16(cols),
			ScrollbackLines: cfg.Terminal.ScrollbackLines,
			MaxHistory:      cfg.Terminal.MaxHistory,
			EchoMode:        localecho.Heuristic,
			Hooks:           hooks,
		})
	}
}

// namedActions maps the config keybindings table's named actions onto
// keymap.Action values. ActionSendToPty and ActionExecuteScript have no
// entry here: a raw byte payload or a script id isn't nameable in a
// keybindings table entry, only in a hooks.custom_keybindings entry.
var namedActions = map[string]keymap.Action{
	"new_tab":   {Kind: keymap.ActionNewTab},
	"close_tab": {Kind: keymap.ActionCloseTab},
	"next_tab":  {Kind: keymap.ActionNextTab},
	"prev_tab":  {Kind: keymap.ActionPrevTab},
	"split_h":   {Kind: keymap.ActionSplitH},
	"split_v":   {Kind: keymap.ActionSplitV},
	"copy":      {Kind: keymap.ActionCopy},
	"paste":     {Kind: keymap.ActionPaste},
	"search":    {Kind: keymap.ActionSearch},
	"clear":     {Kind: keymap.ActionClear},
	"quit":      {Kind: keymap.ActionQuit},
}

func configuredBindings(named map[string]string) ([]keymap.Binding, error) {
	bindings := make([]keymap.Binding, 0, len(named))
	for actionName, combo := range named {
		action, ok := namedActions[actionName]
		if !ok {
			return nil, fmt.Errorf("unrecognized action %q", actionName)
		}
		key, err := keymap.ParseCombo(combo)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, keymap.Binding{Key: key, Action: action})
	}
	return bindings, nil
}
