package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askBotID string
	askTopK  int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a bot a question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.answer.Answer(ctx, askBotID, question, askTopK)
		if err != nil {
			return err
		}

		fmt.Println(resp.Answer)
		fmt.Println()
		fmt.Printf("(%d sources, embedding backend: %s)\n", len(resp.Sources), resp.Backend)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askBotID, "bot", "", "bot id (required)")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "number of chunks to ground the answer on")
	_ = askCmd.MarkFlagRequired("bot")

	rootCmd.AddCommand(askCmd)
}
