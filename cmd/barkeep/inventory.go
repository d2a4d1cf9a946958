package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"barkeep/service"
	"barkeep/session"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Upload or show the session's liquor inventory",
}

var inventoryIngestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Replace the session's inventory with a CSV file",
	Long: `Replace the session's inventory with a CSV file of four columns:

  name, quantity, volume per unit (ml), cost per unit

A header row is optional. Any malformed row rejects the whole file and keeps the
previous inventory. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		res, err := app.api.IngestInventory(cmd.Context(), session.ID(sessionID), in)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), res, func(w io.Writer) error {
			fmt.Fprintf(w, "Session: %s\n\n", res.SessionID)
			return writeInventory(w, res.Inventory)
		})
	},
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the session's inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := requireSession()
		if err != nil {
			return err
		}
		inv, ok := app.api.Inventory.Load(cmd.Context(), id)
		if !ok {
			return &service.MissingStateError{ID: id, Missing: []session.Kind{session.KindInventory}}
		}
		return render(cmd.OutOrStdout(), inv, func(w io.Writer) error { return writeInventory(w, inv) })
	},
}

func init() {
	inventoryCmd.AddCommand(inventoryIngestCmd, inventoryShowCmd)
	rootCmd.AddCommand(inventoryCmd)
}
