package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-courier/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List messages waiting to be replayed",
	Long: `List all pending messages and chat intents currently held by the
courier. These are messages that could not be sent, usually because
authentication was missing or expired, and will be replayed on the next
authenticated send or replay for their chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openPendingStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		pairs := store.List("chat:pending:")
		intents := openIntentStore(cfg).List("chat:intent:")

		if len(pairs) == 0 && len(intents) == 0 {
			fmt.Println("Nothing pending.")
			return nil
		}

		fmt.Println(headerStyle.Render("Pending Messages"))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHAT\tMESSAGE ID\tTEXT\tATTACHMENTS")

		shown := 0
		for _, pair := range pairs {
			chatID, ok := internal.ParsePendingKey(pair.Key)
			if !ok {
				continue
			}
			msg := internal.DecodePending(pair.Value)
			if msg == nil {
				// Malformed entries are skipped, not fatal
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
				chatID,
				idStyle.Render(msg.ClientMessageID),
				truncate(msg.Text, 48),
				len(msg.Attachments),
			)
			shown++
		}
		w.Flush()

		if len(intents) > 0 {
			fmt.Println()
			fmt.Println(headerStyle.Render("Chat Intents"))
			w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOPIC\tMESSAGE ID\tTEXT")
			for _, pair := range intents {
				topicKey, ok := internal.ParseIntentKey(pair.Key)
				if !ok {
					continue
				}
				intent := internal.DecodeIntent(pair.Value)
				if intent == nil || intent.Message == nil {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					topicKey,
					idStyle.Render(intent.Message.ClientMessageID),
					truncate(intent.Message.Text, 48),
				)
				shown++
			}
			w.Flush()
		}

		fmt.Println()
		fmt.Printf("%s waiting\n", countStyle.Render(fmt.Sprintf("%d", shown)))
		return nil
	},
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}
