package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/domain"
)

var (
	chatSessionID string
	chatUserID    string
	askJSON       bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive recommendation dialogue",
	Long: `Start an interactive dialogue with the recommendation bot.

Type what you feel like eating, your budget or where you are.
Commands:
  /session - Print the current session ID
  /reset   - Forget the conversation and start over
  /quit    - Leave the dialogue`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Send a single utterance and print the reply",
	Long: `Runs one dialogue turn. Pass --session to continue an earlier
conversation; the session ID is printed with every reply.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "continue an existing session")
	chatCmd.Flags().StringVar(&chatUserID, "user", "", "user identifier stored on new sessions")
	askCmd.Flags().StringVar(&chatSessionID, "session", "", "continue an existing session")
	askCmd.Flags().StringVar(&chatUserID, "user", "", "user identifier stored on new sessions")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the turn result as JSON")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	r := newRenderer(out)
	sessionID := chatSessionID

	fmt.Fprintf(out, "%s 안녕! 뭐 먹고 싶어? (/quit 로 끝내기)\n", r.paint(r.bot, botName+":"))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, r.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/session":
			fmt.Fprintln(out, sessionID)
			continue
		case "/reset":
			if sessionService != nil && sessionID != "" {
				if _, err := sessionService.ClearSession(ctx, sessionID); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
			}
			sessionID = ""
			fmt.Fprintln(out, r.paint(r.dim, "(새 대화를 시작해요)"))
			continue
		}

		result := chatService.ProcessTurn(ctx, domain.TurnRequest{
			SessionID: sessionID,
			UserID:    chatUserID,
			Text:      line,
		})
		if result.SessionID != "" {
			sessionID = result.SessionID
		}
		fmt.Fprint(out, r.turn(result))
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	result := chatService.ProcessTurn(commandContext(cmd), domain.TurnRequest{
		SessionID: chatSessionID,
		UserID:    chatUserID,
		Text:      args[0],
	})

	if askJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	r := newRenderer(cmd.OutOrStdout())
	cmd.Print(r.turn(result))
	cmd.Printf("session: %s\n", result.SessionID)
	return nil
}
