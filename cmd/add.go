package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cwarden/eventlist/internal/dateparse"
	"github.com/spf13/cobra"
)

var (
	addDate  string
	addTitle string
)

var addCmd = &cobra.Command{
	Use:   "add [quick text]",
	Short: "Add an event",
	Long: `Add an event. Either pass --date and --title, or a quick line such as
"tomorrow Dentist" or "12/24 Family dinner"; a line without a leading date is
added for today.`,
	Example: `  eventlist add --date 2023-12-24 --title "Family dinner"
  eventlist add next fri Team lunch`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Event date (YYYY-MM-DD or a date expression)")
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Event title")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	logger, closer, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	parser := dateparse.NewParser()
	date, title := addDate, addTitle
	if date == "" && title == "" && len(args) > 0 {
		parsed := parser.ParseQuick(strings.Join(args, " "))
		date, title = parsed.String(), parsed.Text
	} else {
		date = parser.Normalize(date)
		if title == "" {
			title = strings.Join(args, " ")
		}
	}

	if _, err := s.AddEvent(date, title); err != nil {
		return fmt.Errorf("could not add event: %w", err)
	}
	return nil
}
