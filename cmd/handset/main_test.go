package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixperk/handset/pkg/client"
	"github.com/pixperk/handset/pkg/config"
	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

// runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := &cli{logger: logging.Discard()}
	root := newRootCommand(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestRootCommandTree tests that every subcommand is registered
func TestRootCommandTree(t *testing.T) {
	root := newRootCommand(&cli{logger: logging.Discard()})

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"serve", "ping", "book", "return", "list"} {
		assert.Contains(t, names, want)
	}
}

// TestBookRequiresRequester tests required flag handling
func TestBookRequiresRequester(t *testing.T) {
	_, err := execute(t, "book", "phone-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requester")
}

// TestInvalidLogLevel tests that bad logging flags fail before running
func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "ping")
	require.Error(t, err)
}

// TestResolveDue tests --due and --for precedence
func TestResolveDue(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	due, err := resolveDue("2024-05-06T18:00:00", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC), due)

	due, err = resolveDue("", 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), due)

	_, err = resolveDue("tonight", time.Hour, now)
	assert.Error(t, err)

	_, err = resolveDue("", 0, now)
	assert.Error(t, err)
}

// TestWriteEntries tests the list table
func TestWriteEntries(t *testing.T) {
	var out bytes.Buffer
	cmd := newListCommand(&cli{logger: logging.Discard()})
	cmd.SetOut(&out)

	made := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	require.NoError(t, writeEntries(cmd, []client.Entry{
		{Mobile: "phone-1", Status: "AVAILABLE"},
		{Mobile: "phone-2", Status: "IN_USE", Requester: "alice", Made: made, Due: made.Add(time.Hour)},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "MOBILE"))
	assert.Contains(t, lines[1], "AVAILABLE")
	assert.Contains(t, lines[2], "alice")
	assert.Contains(t, lines[2], "2024-05-06T11:00:00.000")
}

// TestServeEndToEnd tests a full server driven by the CLI client commands
func TestServeEndToEnd(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "events.db")

	cfg := config.Default()
	cfg.Mobiles = []string{"phone-1", "phone-2"}
	cfg.HTTPAddr = freeAddr(t)
	cfg.GRPCAddr = freeAddr(t)
	cfg.Notify.Log = false
	cfg.Notify.Journal.Path = journalPath
	require.NoError(t, cfg.Validate())

	a, err := newApp(cfg, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := execute(t, "ping", "--addr", cfg.GRPCAddr)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	out, err := execute(t, "book", "phone-1", "--addr", cfg.GRPCAddr, "-r", "alice", "--for", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "booked phone-1 until")

	_, err = execute(t, "book", "phone-1", "--addr", cfg.GRPCAddr, "-r", "bob")
	assert.Error(t, err)

	out, err = execute(t, "list", "--addr", cfg.GRPCAddr)
	require.NoError(t, err)
	assert.Contains(t, out, "IN_USE")

	_, err = execute(t, "return", "phone-1", "--addr", cfg.GRPCAddr, "-r", "bob")
	assert.Error(t, err)

	out, err = execute(t, "return", "phone-1", "--addr", cfg.GRPCAddr, "-r", "alice")
	require.NoError(t, err)
	assert.Equal(t, "returned phone-1\n", out)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	// the dispatcher drained both events into the journal before closing it
	journal, err := storage.OpenJournal(journalPath)
	require.NoError(t, err)
	defer journal.Close()
	records, err := journal.Read(1, 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
