package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"barkeep/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a fresh session id",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), session.NewID())
		return err
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete everything stored for the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		if err := app.api.Store().Clear(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", id)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionNewCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}
