package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cwarden/eventlist/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events as iCalendar or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "ics", "Output format: ics or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger, closer, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch exportFormat {
	case "ics":
		events := s.All()
		n, err := export.ICS(w, events, time.Now())
		if err != nil {
			return err
		}
		if skipped := len(events) - n; skipped > 0 {
			logger.Warn("skipped events without a YYYY-MM-DD date", "count", skipped)
		}
	case "json":
		return export.JSON(w, s.Records())
	default:
		return fmt.Errorf("unknown export format: %s", exportFormat)
	}

	return nil
}
