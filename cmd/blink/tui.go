package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexwlchan/blink/internal/library"
	"github.com/alexwlchan/blink/internal/preview"
	"github.com/alexwlchan/blink/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("blink needs an interactive terminal; try 'blink stats'")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting blink", "version", Version, "library", a.cfg.Library.Path)

	photos, err := a.openStore()
	if err != nil {
		return err
	}
	defer photos.Close()

	librarySvc := library.NewService(photos, library.Options{Optimistic: a.cfg.Review.Optimistic}, a.logger)
	previewSvc, err := preview.NewService(photos, preview.Options{
		Thumbnails: a.cfg.Cache.Thumbnails,
		FullSize:   a.cfg.Cache.FullSize,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create preview cache: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- librarySvc.Run(ctx) }()

	if interval := a.cfg.Library.SimulateInterval; interval > 0 {
		a.logger.Info("simulating library changes", "interval", interval)
		go photos.Simulate(ctx, interval, rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	model := tui.NewModel(librarySvc, previewSvc, tui.Options{
		StripWidth:         a.cfg.UI.StripWidth,
		Prefetch:           a.cfg.Cache.Prefetch,
		AdvanceAfterReview: a.cfg.Review.AdvanceAfterReview,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	cancel()
	<-done
	a.logger.Info("exiting blink")
	return nil
}
