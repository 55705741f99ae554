package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/chat-courier/internal"
	"github.com/spf13/cobra"
)

var (
	startTopicKey string
	startContext  []string
)

var startCmd = &cobra.Command{
	Use:   "start [message]",
	Short: "Compose a first message before its chat exists",
	Long: `Capture a message (and optional context data) under a topic, before
any chat id exists. Once a chat is created for the topic, the intent is
adopted into that chat and the message is sent exactly once:

  chat-courier start --topic trip-planning "plan me a weekend in Lisbon"
  chat-courier send --chat <new-chat-id> --topic trip-planning`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if startTopicKey == "" {
			return fmt.Errorf("--topic is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		normalizer := internal.NewNormalizer()
		msg := normalizer.Normalize(internal.Draft{Text: strings.Join(args, " ")})
		if msg == nil {
			return fmt.Errorf("nothing to send")
		}

		contextData, err := parseContextData(startContext)
		if err != nil {
			return err
		}

		intents := openIntentStore(cfg)
		internal.SaveIntent(intents, &internal.ChatIntent{
			TopicKey:    startTopicKey,
			Message:     msg,
			ContextData: contextData,
		})

		fmt.Println(keptStyle.Render("Intent saved for topic " + startTopicKey + "."))
		fmt.Println("Message id: " + idStyle.Render(msg.ClientMessageID))
		return nil
	},
}

// parseContextData parses --context values of the form key=value
func parseContextData(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	data := make(map[string]string, len(specs))
	for _, spec := range specs {
		key, value, ok := strings.Cut(spec, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context entry %q, want key=value", spec)
		}
		data[key] = value
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVar(&startTopicKey, "topic", "", "Topic key to file the intent under")
	startCmd.Flags().StringArrayVar(&startContext, "context", nil, "Context data as key=value (repeatable)")
}
