package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/botverse-dev/botverse/internal/store"
)

var (
	botName         string
	botDescription  string
	botSystemPrompt string
)

var createBotCmd = &cobra.Command{
	Use:   "create-bot",
	Short: "Create a new bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		bot := &store.Bot{
			ID:           uuid.New().String(),
			Name:         botName,
			Description:  botDescription,
			SystemPrompt: botSystemPrompt,
		}
		if err := a.db.CreateBot(ctx, bot); err != nil {
			return err
		}

		fmt.Printf("Created bot %s (%s)\n", bot.Name, bot.ID)
		return nil
	},
}

var listBotsCmd = &cobra.Command{
	Use:   "list-bots",
	Short: "List all bots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		bots, err := a.db.ListBots(ctx)
		if err != nil {
			return err
		}
		if len(bots) == 0 {
			fmt.Println("No bots configured.")
			return nil
		}

		for _, bot := range bots {
			docs, err := a.db.ListDocuments(ctx, bot.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s  (%d documents)\n", bot.ID, bot.Name, len(docs))
		}
		return nil
	},
}

func init() {
	createBotCmd.Flags().StringVar(&botName, "name", "", "bot name (required)")
	createBotCmd.Flags().StringVar(&botDescription, "description", "", "bot description")
	createBotCmd.Flags().StringVar(&botSystemPrompt, "system-prompt", "", "system prompt for answer generation")
	_ = createBotCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(createBotCmd)
	rootCmd.AddCommand(listBotsCmd)
}
