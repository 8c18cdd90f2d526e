package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   `delete "date: title"`,
	Short: "Delete an event",
	Long: `Delete the first event whose "date: title" text matches exactly, as
printed by "list". Deleting an event that does not exist does nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	logger, closer, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	selection := strings.Join(args, " ")
	event, ok := s.Lookup(selection).Get()
	if !ok {
		logger.Info("nothing to delete", "selection", selection)
		return nil
	}

	if err := s.DeleteEvent(event.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", event.Display())
	return nil
}
