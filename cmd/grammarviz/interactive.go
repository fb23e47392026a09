package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/bindings"
	"github.com/unkn0wn-root/grammarviz/internal/config"
	"github.com/unkn0wn-root/grammarviz/internal/theme"
	"github.com/unkn0wn-root/grammarviz/internal/ui"
	"github.com/unkn0wn-root/grammarviz/internal/watcher"
)

func runInteractive(cmd *cobra.Command, opts *globalOptions, path string) error {
	if path != "" {
		path = filepath.Clean(path)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("grammar file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("grammar file %s is a directory", path)
		}
	}

	a, err := newApp(cmd, opts, appOptions{getenv: os.Getenv})
	if err != nil {
		return err
	}
	defer a.close()

	keys, src, err := bindings.Load(config.Dir())
	if err != nil {
		a.log.Warn("bindings load failed, using defaults", zap.String("path", src.Path), zap.Error(err))
		keys = bindings.DefaultMap()
	}
	themes, err := theme.LoadCatalog([]string{config.ThemeDir()})
	if err != nil {
		a.log.Warn("theme load", zap.Error(err))
	}

	var w *watcher.Watcher
	if path != "" {
		w = watcher.New(watcher.Options{Logger: a.log.Named("watcher")})
		w.Start()
		defer w.Stop()
	}

	model := ui.New(ui.Config{
		Controller:   a.controller(-1),
		Settings:     a.settings,
		SaveSettings: a.saveSettings,
		Bindings:     keys,
		Themes:       themes,
		Watcher:      w,
		GrammarPath:  path,
		Logger:       a.log.Named("ui"),
		Debounce:     a.settings.Debounce.Std(),
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	final, err := program.Run()
	if m, ok := final.(ui.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
