package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwarden/eventlist/internal/config"
	"github.com/cwarden/eventlist/internal/notify"
	"github.com/cwarden/eventlist/internal/store"
	"github.com/cwarden/eventlist/internal/ui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cfgFile    string
	eventsFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "eventlist",
	Short: "A calendar event list kept in a JSON file",
	Long: `eventlist manages named events by date. Events are added, edited,
deleted and filtered from a terminal calendar or from subcommands, and stored
in a local JSON file.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE:              runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&eventsFile, "file", "f", "", "Events file to use (overrides events_file)")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if eventsFile != "" {
		cfg.EventsFile = eventsFile
	}
	return nil
}

// newLogger writes to the configured log file, or to fallback when none is
// set. The returned closer must be called on exit.
func newLogger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	w := fallback
	var closer io.Closer = io.NopCloser(nil)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = f
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})
	return slog.New(handler), closer, nil
}

// openStore loads the events file with the notification sink from config.
func openStore(logger *slog.Logger, out io.Writer) (*store.Store, error) {
	sink, err := notify.FromConfig(cfg.Notify, out, logger)
	if err != nil {
		return nil, err
	}

	s := store.New(cfg.EventsFile, store.WithLogger(logger), store.WithNotifier(sink))
	s.Load()
	if err := s.LastLoadError(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return s, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Logging to the terminal would corrupt the alternate screen.
	logger, closer, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Console notifications go to the status bar while the TUI is running.
	notes := ui.NewNotifications()
	var sink notify.Sink = notes
	switch cfg.Notify {
	case "log":
		sink = notify.Multi{notes, notify.Log{Logger: logger}}
	case "none":
		sink = notify.Discard
	}

	s := store.New(cfg.EventsFile, store.WithLogger(logger), store.WithNotifier(sink))
	s.Load()

	model := ui.NewModel(cfg, s, notes, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.WatchFile {
		watcher, err := store.NewWatcher(s, func() {
			p.Send(ui.StoreChangedMsg{})
		})
		if err != nil {
			logger.Warn("file watching disabled", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}
