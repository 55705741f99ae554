package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/chat-courier/internal"
	"github.com/spf13/cobra"
)

var (
	replayChatID   string
	replayTopicKey string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a pending message for a chat",
	Long: `Replay the pending message for a chat, if one exists.

A message becomes pending when a send was interrupted: you were not
authenticated, or the session expired mid-send. Replay consumes the
pending entry before sending, so running it twice can never deliver the
message twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayChatID == "" {
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

		ctx := context.Background()

		if replayTopicKey != "" {
			intents := openIntentStore(cfg)
			internal.AdoptIntent(intents, store, replayTopicKey, replayChatID)
		}

		auth := internal.NewEnvAuthProvider(tokenEnvVar)
		transport := internal.NewOpenAITransport(cfg.Backend, auth)

		orch := internal.NewOrchestrator(replayChatID, store, transport, auth)
		orch.SetTranscript(internal.NewTranscript())
		orch.SetTokenSink(func(token string) {
			fmt.Print(assistantStyle.Render(token))
		})

		syncer := internal.NewSynchronizer(orch, store, auth)
		if !syncer.Sync(ctx) {
			// Sync declines either because nothing is pending or
			// because login is still required
			if internal.DecodePending(store.Get(internal.PendingKey(replayChatID))) != nil {
				return fmt.Errorf("not authenticated: set %s and rerun", tokenEnvVar)
			}
			fmt.Println("Nothing pending for chat " + replayChatID + ".")
			return nil
		}

		orch.Wait()
		fmt.Println()

		return reportResult(orch)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&replayChatID, "chat", "", "Chat id to replay")
	replayCmd.Flags().StringVar(&replayTopicKey, "topic", "", "Adopt a pending intent for this topic into the chat first")
}
