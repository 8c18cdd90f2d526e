package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cwarden/eventlist/internal/dateparse"
	"github.com/spf13/cobra"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List the events of a date and exit",
	Long: `List the events of one date (today by default) in a simple text format.
The date may be written as 2024-01-01, 1/1/2024, "tomorrow", "next fri" and
similar expressions.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "List every event grouped by date")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	logger, closer, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if listAll {
		for _, date := range s.Dates() {
			events := s.FilterByDate(date)
			if len(events) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s:\n", date)
			for _, event := range events {
				fmt.Fprintf(out, "  %s\n", event.Display())
			}
		}
		return nil
	}

	date := time.Now().Format(dateparse.Layout)
	if len(args) > 0 {
		input := strings.Join(args, " ")
		date = dateparse.NewParser().Normalize(input)
	}

	events := s.FilterByDate(date)
	fmt.Fprintf(out, "Events for %s:\n", date)
	if len(events) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	for _, event := range events {
		fmt.Fprintf(out, "  %s\n", event.Display())
	}

	return nil
}
