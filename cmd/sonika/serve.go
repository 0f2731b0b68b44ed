package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oduortoni/sonika/internal/config"
	"github.com/oduortoni/sonika/internal/logging"
	"github.com/oduortoni/sonika/internal/server"
)

// terminationSignals are the signals that trigger a graceful shutdown.
var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// serveMain is the entry point for the serve command.
func serveMain(command *cobra.Command, _ []string) error {
	cfg, err := loadConfiguration(command.Flags())
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Debug).Sublogger("server")

	for _, dir := range []string{cfg.StaticDir, cfg.TunesDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn(errors.Errorf("%s is not a directory", dir))
		}
	}

	s := server.New(cfg, logger)
	listener, err := s.Listen()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), terminationSignals...)
	defer stop()

	if err := printBanner(command.OutOrStdout(), cfg, listener.Addr()); err != nil {
		listener.Close()
		return err
	}

	return s.Serve(ctx, listener)
}

// printBanner announces the served directories and the listen address.
func printBanner(w io.Writer, cfg *config.Config, addr net.Addr) error {
	staticDir, err := filepath.Abs(cfg.StaticDir)
	if err != nil {
		return errors.Wrap(err, "unable to resolve static directory")
	}
	tunesDir, err := filepath.Abs(cfg.TunesDir)
	if err != nil {
		return errors.Wrap(err, "unable to resolve tunes directory")
	}

	color.New(color.FgCyan).Fprintf(w, "🌐 Serving %s at http://%s\n", staticDir, addr)
	fmt.Fprintf(w, "🎵 Tunes from %s\n", tunesDir)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
	return nil
}

var serveCommand = &cobra.Command{
	Use:          "serve",
	Short:        "Start the HTTP server (default command)",
	Args:         cobra.NoArgs,
	RunE:         serveMain,
	SilenceUsage: true,
}
