package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-courier/internal"
	"github.com/spf13/cobra"
)

var (
	sendChatID      string
	sendTopicKey    string
	sendAttachments []string
)

var (
	// Styles
	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	sendErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sessionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	keptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message to a chat",
	Long: `Send a message to a chat, streaming the assistant reply to stdout.

Any pending message left over from an earlier interrupted send is replayed
first. If you are not authenticated, the message is kept and replayed on
the next authenticated run: nothing to re-type, nothing sent twice.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendChatID == "" {
			return fmt.Errorf("--chat is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openPendingStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		attachments, err := parseAttachments(sendAttachments)
		if err != nil {
			return err
		}

		auth := internal.NewEnvAuthProvider(tokenEnvVar)
		transport := internal.NewOpenAITransport(cfg.Backend, auth)

		orch := internal.NewOrchestrator(sendChatID, store, transport, auth)
		orch.SetTranscript(internal.NewTranscript())
		orch.SetTokenSink(func(token string) {
			fmt.Print(assistantStyle.Render(token))
		})

		ctx := context.Background()

		// Pick up a message composed before this chat existed
		if sendTopicKey != "" {
			intents := openIntentStore(cfg)
			internal.AdoptIntent(intents, store, sendTopicKey, sendChatID)
		}

		// Replay anything a previous run left behind before the new send
		syncer := internal.NewSynchronizer(orch, store, auth)
		if syncer.Sync(ctx) {
			orch.Wait()
			fmt.Println()
		}

		draft := internal.Draft{
			Text:        strings.Join(args, " "),
			Attachments: attachments,
		}

		if !orch.Submit(ctx, draft) {
			if strings.TrimSpace(draft.Text) == "" && len(attachments) == 0 {
				return fmt.Errorf("nothing to send")
			}
			// Unauthenticated: the message is stored, not lost
			fmt.Println(keptStyle.Render("Message kept. Authenticate and run `chat-courier replay --chat " + sendChatID + "`."))
			return nil
		}

		orch.Wait()
		fmt.Println()

		return reportResult(orch)
	},
}

// reportResult maps the orchestrator's final state to CLI output
func reportResult(orch *internal.Orchestrator) error {
	ie := orch.InlineError()
	if ie == nil {
		return nil
	}

	if ie.IsSessionError {
		fmt.Fprintln(os.Stderr, sessionStyle.Render(ie.Message))
		fmt.Fprintln(os.Stderr, "The message was kept; run `chat-courier replay --chat "+orch.ChatID()+"` after reconnecting.")
	} else {
		fmt.Fprintln(os.Stderr, sendErrorStyle.Render(ie.Message))
		if ie.RetryMessage != nil {
			fmt.Fprintf(os.Stderr, "Retry with the same message id: %s\n", ie.RetryMessage.ClientMessageID)
		}
	}
	return fmt.Errorf("delivery did not complete")
}

// parseAttachments parses --attach values of the form name=url or url
func parseAttachments(specs []string) ([]internal.Attachment, error) {
	var attachments []internal.Attachment
	for i, spec := range specs {
		att := internal.Attachment{ID: fmt.Sprintf("att-%d", i+1)}
		// name=url form, unless the part before '=' is itself a URL piece
		if name, url, ok := strings.Cut(spec, "="); ok && !strings.ContainsAny(name, ":/") {
			att.Name = name
			att.URL = url
		} else {
			att.URL = spec
		}
		if att.URL == "" {
			return nil, fmt.Errorf("invalid attachment %q", spec)
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendChatID, "chat", "", "Chat id to send to")
	sendCmd.Flags().StringVar(&sendTopicKey, "topic", "", "Adopt a pending intent for this topic into the chat first")
	sendCmd.Flags().StringArrayVar(&sendAttachments, "attach", nil, "Attachment as name=url (repeatable)")
}
