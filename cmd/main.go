package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"sheet2ics/internal/config"
	"sheet2ics/internal/converter"
	"sheet2ics/internal/publish"
	"sheet2ics/internal/sheet"
	"sheet2ics/internal/transform"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "sheet2ics",
		Usage:     "Convert spreadsheet rows into individual iCalendar (.ics) files with travel-time friendly metadata for Apple Calendar.",
		ArgsUsage: "<spreadsheet>  (flags go before the spreadsheet path)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", EnvVars: []string{"SHEET2ICS_CONFIG"}, Usage: "YAML or TOML file providing defaults for the flags below"},
			&cli.StringFlag{Name: "output", Value: config.DefaultOutputDir, EnvVars: []string{"SHEET2ICS_OUTPUT"}, Usage: "Directory where .ics files will be written"},
			&cli.StringFlag{Name: "timezone", Value: config.DefaultTimezone, EnvVars: []string{"SHEET2ICS_TIMEZONE"}, Usage: "IANA timezone name to localize event times"},
			&cli.IntFlag{Name: "alert-minutes", Value: config.DefaultAlertMinutes, EnvVars: []string{"SHEET2ICS_ALERT_MINUTES"}, Usage: "Minutes before start to trigger travel alert"},
			&cli.StringFlag{Name: "sheet", EnvVars: []string{"SHEET2ICS_SHEET"}, Usage: "Worksheet to read (default: first sheet)"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be written without writing files."},
			&cli.StringFlag{Name: "log-level", Value: config.DefaultLogLevel, EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "caldav-endpoint", EnvVars: []string{"CALDAV_ENDPOINT"}, Usage: "Also upload events to this CalDAV server"},
			&cli.StringFlag{Name: "caldav-username", EnvVars: []string{"CALDAV_USERNAME"}},
			&cli.StringFlag{Name: "caldav-password", EnvVars: []string{"CALDAV_PASSWORD"}},
			&cli.StringFlag{Name: "caldav-calendar", EnvVars: []string{"CALDAV_CALENDAR_NAME"}, Usage: "Display name of the target calendar"},
			&cli.StringFlag{Name: "caldav-calendar-path", EnvVars: []string{"CALDAV_CALENDAR_PATH"}, Usage: "Collection path of the target calendar, skips discovery"},
		},
		Action: convertAction,
	}
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one spreadsheet path after the flags, got %d arguments (flags after the path are not parsed)", c.NArg())
	}
	input := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	rows, err := sheet.NewLoader(logger, cfg.Sheet).Load(input)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", input, err)
	}

	opts := []converter.Option{converter.WithDryRun(cfg.DryRun)}
	if cfg.CalDAV.Enabled() && !cfg.DryRun {
		publisher, err := publish.NewPublisher(c.Context, logger, publish.Options{
			Endpoint:     cfg.CalDAV.Endpoint,
			Username:     cfg.CalDAV.Username,
			Password:     cfg.CalDAV.Password,
			CalendarName: cfg.CalDAV.CalendarName,
			CalendarPath: cfg.CalDAV.CalendarPath,
		})
		if err != nil {
			return fmt.Errorf("failed to create caldav publisher: %w", err)
		}
		opts = append(opts, converter.WithPublisher(publisher))
	}

	t := transform.New(loc, cfg.AlertMinutes, transform.LenientParser{})
	conv := converter.NewConverter(logger, t, cfg.OutputDir, opts...)
	if _, err := conv.Run(c.Context, rows); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}

// loadConfig layers the config file, then environment and flags, over the defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setString("output", &cfg.OutputDir)
	setString("timezone", &cfg.Timezone)
	setString("sheet", &cfg.Sheet)
	setString("log-level", &cfg.LogLevel)
	setString("caldav-endpoint", &cfg.CalDAV.Endpoint)
	setString("caldav-username", &cfg.CalDAV.Username)
	setString("caldav-password", &cfg.CalDAV.Password)
	setString("caldav-calendar", &cfg.CalDAV.CalendarName)
	setString("caldav-calendar-path", &cfg.CalDAV.CalendarPath)
	if c.IsSet("alert-minutes") {
		cfg.AlertMinutes = c.Int("alert-minutes")
	}
	if c.IsSet("dry-run") {
		cfg.DryRun = c.Bool("dry-run")
	}
	cfg.Normalize()

	return cfg, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
