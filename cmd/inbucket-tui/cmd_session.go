package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grptx/inbucket/internal/session"
	"github.com/grptx/inbucket/internal/store"
)

// sessionCmd inspects the shared session record.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or reset the shared session record",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored session record",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the stored session record to defaults",
	Args:  cobra.NoArgs,
	RunE:  runSessionClear,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

func openStore() (store.KV, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.Debug("opening session store", zap.String("backend", cfg.Store.Backend), zap.String("dir", cfg.Store.Dir))
	return store.Open(cfg.Store, cfg.GetPollInterval())
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	kv, err := openStore()
	if err != nil {
		return err
	}
	defer kv.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	raw, err := kv.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(out, "No session stored.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	rec, err := session.Decode(raw)
	if err != nil {
		logger.Warn("stored session is malformed", zap.Error(err))
		fmt.Fprintf(out, "Stored session is malformed: %v\n", err)
		return nil
	}

	fmt.Fprintf(out, "Version: %s\n", rec.Version)
	if rec.Flash != "" {
		fmt.Fprintf(out, "Flash:   %s\n", rec.Flash)
	}
	if len(rec.RecentMailboxes) == 0 {
		fmt.Fprintln(out, "Recent mailboxes: none")
		return nil
	}
	fmt.Fprintln(out, "Recent mailboxes:")
	for i, name := range rec.RecentMailboxes {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	kv, err := openStore()
	if err != nil {
		return err
	}
	defer kv.Close()

	raw, err := session.Encode(session.DefaultRecord())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	if err := kv.Save(ctx, raw); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	logger.Info("session reset")
	fmt.Fprintln(cmd.OutOrStdout(), "Session reset.")
	return nil
}
