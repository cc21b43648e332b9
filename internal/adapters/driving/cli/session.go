package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

var historyLimit int

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect conversation sessions",
}

var sessionExportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Print a session snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionExport,
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Print the messages of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionHistory,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionClear,
}

var sessionCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Remove expired sessions and count the active ones",
	Args:  cobra.NoArgs,
	RunE:  runSessionCount,
}

func init() {
	sessionHistoryCmd.Flags().IntVarP(&historyLimit, "last", "n", 0, "only the last N messages (0 = all)")
	sessionCmd.AddCommand(sessionExportCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionCountCmd)
	rootCmd.AddCommand(sessionCmd)
}

var errNoSessionService = errors.New("session service not configured")

func runSessionExport(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNoSessionService
	}

	snapshot, err := sessionService.ExportSession(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}
	if snapshot == nil {
		return fmt.Errorf("session not found: %s", args[0])
	}
	return writeJSON(cmd.OutOrStdout(), snapshot)
}

func runSessionHistory(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNoSessionService
	}

	messages, err := sessionService.History(commandContext(cmd), args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if messages == nil {
		return fmt.Errorf("session not found: %s", args[0])
	}

	for _, msg := range messages {
		speaker := "나"
		if msg.Role != domain.RoleUser {
			speaker = botName
		}
		cmd.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), speaker, msg.Content)
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNoSessionService
	}

	removed, err := sessionService.ClearSession(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if !removed {
		return fmt.Errorf("session not found: %s", args[0])
	}
	cmd.Printf("Session %s cleared.\n", args[0])
	return nil
}

func runSessionCount(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errNoSessionService
	}

	n, err := sessionService.ActiveCount(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	cmd.Printf("Active sessions: %d\n", n)
	return nil
}
