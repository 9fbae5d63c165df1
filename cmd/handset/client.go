package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pixperk/handset/pkg/client"
	hstime "github.com/pixperk/handset/pkg/time"
	"github.com/pixperk/handset/pkg/types"
	"github.com/spf13/cobra"
)

const (
	defaultAddr    = "localhost:9090"
	defaultTimeout = 5 * time.Second
)

type clientFlags struct {
	addr      string
	requester string
	timeout   time.Duration
}

func (f *clientFlags) register(cmd *cobra.Command, needRequester bool) {
	cmd.Flags().StringVar(&f.addr, "addr", defaultAddr, "gRPC address of the handset server")
	cmd.Flags().DurationVar(&f.timeout, "timeout", defaultTimeout, "Per call timeout")
	if needRequester {
		cmd.Flags().StringVarP(&f.requester, "requester", "r", "", "Who is booking or returning")
		_ = cmd.MarkFlagRequired("requester")
	}
}

// dials the server and runs fn with a timeout bound context
func (f *clientFlags) with(ctx context.Context, fn func(context.Context, *client.Client) error) error {
	c, err := client.NewClient(f.addr, f.requester)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return fn(ctx, c)
}

func newPingCommand(c *cli) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "ping",
		Args:  cobra.NoArgs,
		Short: "Print the server clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.with(cmd.Context(), func(ctx context.Context, cl *client.Client) error {
				now, err := cl.Ping(ctx)
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", hstime.FormatLocal(now))
				return nil
			})
		},
	}

	flags.register(cmd, false)
	return cmd
}

func newBookCommand(c *cli) *cobra.Command {
	var (
		flags clientFlags
		due   string
		hold  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "book <mobile>",
		Args:  cobra.ExactArgs(1),
		Short: "Book a mobile until a due time",
		RunE: func(cmd *cobra.Command, args []string) error {
			until, err := resolveDue(due, hold, time.Now())
			if err != nil {
				return err
			}

			logger := c.logger.With("command", "book", "mobile", args[0])
			return flags.with(cmd.Context(), func(ctx context.Context, cl *client.Client) error {
				b, err := cl.Book(ctx, args[0], until)
				if holder, ok := types.HolderOf(err); ok {
					logger.Warn("mobile is taken", "holder", holder)
				}
				if err != nil {
					return err
				}
				printf(cmd, "booked %s until %s\n", b.Mobile(), hstime.FormatLocal(b.Due()))
				return nil
			})
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&due, "due", "", "Due time as ISO local date-time in UTC, e.g. 2024-05-06T18:00:00")
	cmd.Flags().DurationVar(&hold, "for", time.Hour, "Hold duration, used when --due is not given")
	return cmd
}

// --due wins over --for
func resolveDue(due string, hold time.Duration, now time.Time) (time.Time, error) {
	if due != "" {
		t, err := hstime.ParseLocal(due)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --due: %w", err)
		}
		return t, nil
	}
	if hold <= 0 {
		return time.Time{}, errors.New("--for must be positive")
	}
	return now.UTC().Add(hold), nil
}

func newReturnCommand(c *cli) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "return <mobile>",
		Args:  cobra.ExactArgs(1),
		Short: "Return a booked mobile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.with(cmd.Context(), func(ctx context.Context, cl *client.Client) error {
				if err := cl.Return(ctx, args[0]); err != nil {
					if holder, ok := types.HolderOf(err); ok {
						c.logger.Warn("mobile is held by someone else", "mobile", args[0], "holder", holder)
					}
					return err
				}
				printf(cmd, "returned %s\n", args[0])
				return nil
			})
		},
	}

	flags.register(cmd, true)
	return cmd
}

func newListCommand(c *cli) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List every mobile with its status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.with(cmd.Context(), func(ctx context.Context, cl *client.Client) error {
				entries, err := cl.List(ctx)
				if err != nil {
					return err
				}
				c.logger.Debug("listed mobiles", "count", len(entries))
				return writeEntries(cmd, entries)
			})
		},
	}

	flags.register(cmd, false)
	return cmd
}

func writeEntries(cmd *cobra.Command, entries []client.Entry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOBILE\tSTATUS\tREQUESTER\tMADE\tDUE")
	for _, e := range entries {
		made, due := "-", "-"
		if !e.Made.IsZero() {
			made = hstime.FormatLocal(e.Made)
		}
		if !e.Due.IsZero() {
			due = hstime.FormatLocal(e.Due)
		}
		requester := e.Requester
		if requester == "" {
			requester = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Mobile, e.Status, requester, made, due)
	}
	return tw.Flush()
}
