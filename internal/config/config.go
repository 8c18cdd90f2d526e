package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// File settings
	EventsFile string
	WatchFile  bool

	// Notification and logging
	Notify   string
	LogLevel slog.Level
	LogFile  string

	// Display settings
	WeekStartDay time.Weekday
	DateFormat   string

	// UI settings
	Colors map[string]string
	// KeyBindings maps a key to the action it triggers.
	KeyBindings map[string]string

	// Behavior settings
	ConfirmDelete bool
	WrapText      bool
}

// fileConfig mirrors Config for YAML files. Pointers distinguish unset keys.
type fileConfig struct {
	EventsFile    *string           `yaml:"events_file"`
	WatchFile     *bool             `yaml:"watch_file"`
	Notify        *string           `yaml:"notify"`
	LogLevel      *string           `yaml:"log_level"`
	LogFile       *string           `yaml:"log_file"`
	WeekStartDay  *string           `yaml:"week_start_day"`
	DateFormat    *string           `yaml:"date_format"`
	ConfirmDelete *bool             `yaml:"confirm_delete"`
	WrapText      *bool             `yaml:"wrap_text"`
	Colors        map[string]string `yaml:"colors"`
	KeyBindings   map[string]string `yaml:"bindings"`
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func DefaultConfig() *Config {
	return &Config{
		EventsFile: "events.json",
		WatchFile:  true,

		Notify:   "console",
		LogLevel: slog.LevelInfo,

		WeekStartDay: time.Monday,
		DateFormat:   "Jan 2, 2006",

		Colors: map[string]string{
			"normal":   "252",
			"today":    "220",
			"selected": "220",
			"weekend":  "39",
			"event":    "40",
			"header":   "220",
		},

		KeyBindings: map[string]string{
			"q": "quit",
			"?": "help",
			"t": "today",
			"a": "new_event",
			"e": "edit_event",
			"d": "delete_event",
			"g": "goto_date",
			"l": "next_day",
			"h": "prev_day",
			"j": "next_week",
			"k": "prev_week",
			">": "next_month",
			"<": "prev_month",
		},

		ConfirmDelete: true,
		WrapText:      true,
	}
}

// SearchPaths returns the config file locations tried by LoadConfig, in order.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{os.Getenv("EVENTLIST_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "eventlist", "eventlistrc"))
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", "eventlist", "eventlistrc"),
			filepath.Join(home, ".config", "eventlist", "config.yaml"),
			filepath.Join(home, ".eventlistrc"),
		)
	}
	return paths
}

// LoadConfig returns the defaults overlaid with the first config file found
// in SearchPaths.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	for _, path := range SearchPaths() {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

// LoadConfigFile returns the defaults overlaid with the given file, which
// must exist.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.loadFromFile(path); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return c.loadYAML(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}

	strs := []struct {
		name  string
		value *string
	}{
		{"events_file", fc.EventsFile},
		{"notify", fc.Notify},
		{"log_level", fc.LogLevel},
		{"log_file", fc.LogFile},
		{"week_start_day", fc.WeekStartDay},
		{"date_format", fc.DateFormat},
	}
	for _, s := range strs {
		if s.value == nil {
			continue
		}
		if err := c.setVariable(s.name, *s.value); err != nil {
			return err
		}
	}

	if fc.WatchFile != nil {
		c.WatchFile = *fc.WatchFile
	}
	if fc.ConfirmDelete != nil {
		c.ConfirmDelete = *fc.ConfirmDelete
	}
	if fc.WrapText != nil {
		c.WrapText = *fc.WrapText
	}
	for element, spec := range fc.Colors {
		c.Colors[element] = spec
	}
	for key, action := range fc.KeyBindings {
		c.KeyBindings[key] = action
	}

	return nil
}

func (c *Config) parseLine(line string) error {
	// Handle set commands: set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// Handle bind commands: bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	// Handle color commands: color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = matches[2]
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(value, `"'`)

	switch name {
	case "events_file":
		c.EventsFile = expandHome(strings.TrimSpace(value))

	case "watch_file":
		c.WatchFile = parseBool(value)

	case "notify":
		switch strings.ToLower(value) {
		case "console", "log", "none":
			c.Notify = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid notify: %s", value)
		}

	case "log_level":
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid log_level: %s", value)
		}
		c.LogLevel = level

	case "log_file":
		c.LogFile = expandHome(strings.TrimSpace(value))

	case "week_start_day":
		switch strings.ToLower(value) {
		case "sunday", "sun", "0":
			c.WeekStartDay = time.Sunday
		case "monday", "mon", "1":
			c.WeekStartDay = time.Monday
		default:
			return fmt.Errorf("invalid week_start_day: %s", value)
		}

	case "date_format":
		c.DateFormat = value

	case "confirm_delete":
		c.ConfirmDelete = parseBool(value)

	case "wrap_text":
		c.WrapText = parseBool(value)

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// Action returns the action bound to key, or "" when the key is unbound.
func (c *Config) Action(key string) string {
	return c.KeyBindings[key]
}

// Keys returns the keys bound to action in sorted order.
func (c *Config) Keys(action string) []string {
	var keys []string
	for key, bound := range c.KeyBindings {
		if bound == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// Expand ~ to home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
