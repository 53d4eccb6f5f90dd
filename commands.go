package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"feedback-capture/auth"
	"feedback-capture/client"
	"feedback-capture/config"
	filemanagement "feedback-capture/file-management"
	"feedback-capture/pending"
	"feedback-capture/storage"
	"feedback-capture/sweep"
)

func newQueueCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List videos waiting for upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.OpenSQLiteKeyValueStore(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer store.Close()

			paths, err := pending.NewQueue(store).List(cmd.Context())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos waiting for upload.")
				return nil
			}

			rows := make([][]string, 0, len(paths))
			for i, path := range paths {
				size := "missing"
				if info, err := os.Stat(path); err == nil {
					size = fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024))
				}
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), path, size})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "File", "Size"}, rows, cmd.OutOrStdout()))
			return nil
		},
	}
}

func newSweepCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Upload all queued videos now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.OpenSQLiteKeyValueStore(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer store.Close()

			queue := pending.NewQueue(store)
			serverClient := client.NewFeedbackServerClient(cfg.ServerURL, time.Duration(cfg.ServerTimeoutSeconds)*time.Second)
			fileTracker := filemanagement.NewLocalFileTracker(cfg.TempDir)

			uploaded, failed := sweep.NewSweeper(queue, serverClient, fileTracker).Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d video(s), %d still pending.\n", uploaded, failed)
			return nil
		},
	}
}

func newLoginCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store the access token for this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.OpenSQLiteKeyValueStore(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer store.Close()

			token := strings.TrimSpace(args[0])
			if err := auth.NewTokenStore(store).SetToken(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}
}

func newLogoutCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.OpenSQLiteKeyValueStore(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open local store: %w", err)
			}
			defer store.Close()

			if err := auth.NewTokenStore(store).ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func renderTable(headers []string, rows [][]string, out io.Writer) string {
	tw := table.NewWriter()
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressIndicator shows an indeterminate spinner while a foreground
// upload is in flight; on non-terminals it degrades to a single line
type progressIndicator struct {
	out *os.File

	mu      sync.Mutex
	writer  progress.Writer
	tracker *progress.Tracker
}

func newProgressIndicator(out *os.File) *progressIndicator {
	return &progressIndicator{out: out}
}

func (i *progressIndicator) Start(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !isTerminal(i.out) {
		fmt.Fprintln(i.out, message)
		return
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(i.out)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Percentage = false
	pw.Style().Visibility.Value = false

	tracker := &progress.Tracker{Message: message}
	pw.AppendTracker(tracker)
	go pw.Render()

	i.writer = pw
	i.tracker = tracker
}

func (i *progressIndicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.tracker != nil {
		i.tracker.MarkAsDone()
		i.tracker = nil
	}
	if i.writer != nil {
		i.writer.Stop()
		i.writer = nil
	}
}
