package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"barkeep"
	"barkeep/service"
)

var (
	chatContext string
	chatReset   bool
	chatModels  string
)

var chatCmd = &cobra.Command{
	Use:   "chat QUESTION...",
	Short: "Ask a follow-up question about the recipe or cocktails in general",
	Long: `Ask a follow-up question. The conversation is kept per session; switching
--context between recipe and general starts a new conversation.`,
	Example: `  barkeep chat --session 5b1c... "Can I batch this for a party of 40?"
  barkeep chat --context general "What's the difference between a sour and a daisy?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		if chatReset {
			if err := app.api.Chat.Reset(cmd.Context(), id); err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared")
				return nil
			}
		}
		if len(args) == 0 {
			return fmt.Errorf("a question is required")
		}
		cc, err := service.ParseChatContext(chatContext)
		if err != nil {
			return err
		}
		answer, err := app.api.Chat.Ask(cmd.Context(), id, cc, strings.Join(args, " "), barkeep.SplitModels(chatModels))
		if err != nil {
			return err
		}
		out := struct {
			Context string `json:"context" yaml:"context"`
			Answer  string `json:"answer" yaml:"answer"`
		}{string(cc), answer}
		return render(cmd.OutOrStdout(), out, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, answer)
			return err
		})
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatContext, "context", "c", string(service.ChatRecipe), "Conversation context: recipe or general")
	chatCmd.Flags().BoolVar(&chatReset, "reset", false, "Clear the chat history first")
	chatCmd.Flags().StringVar(&chatModels, "models", "", "Semicolon-separated model ids overriding the chat priority list")
	rootCmd.AddCommand(chatCmd)
}
