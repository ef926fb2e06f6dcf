package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gugverein/portal/internal/app"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/store"
)

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "gugportal: %v\n", err)
		os.Exit(1)
	}

	if cfg.Server.BaseURL == "" {
		fmt.Fprintf(os.Stderr,
			"gugportal: no server configured; set server.base_url in %s\n",
			model.DefaultConfigPath(),
		)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "gugportal: creating data dir: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so background logging goes to a file.
	logFile, err := os.OpenFile(
		filepath.Join(cfg.DataDir, "portal.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644,
	)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	local, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "portal.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "gugportal: opening local store: %v\n", err)
		os.Exit(1)
	}
	defer local.Close()

	p := tea.NewProgram(app.New(cfg, local), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gugportal: %v\n", err)
		os.Exit(1)
	}
}
