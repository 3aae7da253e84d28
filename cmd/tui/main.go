package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"taskboard/internal/client"
	"taskboard/internal/credential"
	"taskboard/internal/tui"
	"taskboard/shared/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", tui.DefaultConfigPath(), "path to the config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := tui.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logFile, err := logger.InitFileLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger.SetLevel(cfg.LogLevel)

	store, err := credential.Open(tui.ConfigDir())
	if err != nil {
		return err
	}

	api := client.New(cfg.ServerURL)

	loggedIn := false

	tokens, err := store.Load()
	switch {
	case err == nil:
		api.SetTokens(client.Tokens{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
		loggedIn = true
	case errors.Is(err, credential.ErrNotFound):
		log.Debug().Msg("no stored credentials")
	default:
		log.Warn().Err(err).Msg("failed to load stored credentials")
	}

	log.Info().Str("server", cfg.ServerURL).Bool("loggedIn", loggedIn).Msg("starting terminal client")

	program := tea.NewProgram(
		tui.New(api, store, cfg, loggedIn, tui.WithConfigPath(configPath)),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running terminal client: %w", err)
	}

	return nil
}
