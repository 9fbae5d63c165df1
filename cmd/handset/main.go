package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixperk/handset/pkg/logging"
	"github.com/spf13/cobra"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// shared by every subcommand; the logger is rebuilt once flags are parsed
type cli struct {
	level  slog.LevelVar
	logger *slog.Logger
}

func main() {
	c := &cli{}
	c.level.Set(slog.LevelInfo)
	c.logger = logging.New(logging.FormatText, os.Stderr, &c.level)
	slog.SetDefault(c.logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(c)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		c.logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(c *cli) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:           "handset",
		Short:         "Book and return shared test mobiles",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Log verbosity (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "Log format (text, json)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.configureLogging(logLevel, logFormat, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newServeCommand(c),
		newPingCommand(c),
		newBookCommand(c),
		newReturnCommand(c),
		newListCommand(c),
	)
	return root
}

func (c *cli) configureLogging(level, format string, w io.Writer) error {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}

	c.level.Set(lvl)
	c.logger = logging.New(f, w, &c.level)
	slog.SetDefault(c.logger)
	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
