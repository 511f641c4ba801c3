package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"sheet2ics/internal/ics"
	"sheet2ics/internal/models"
	"sheet2ics/internal/sheet"
)

// Transformer turns one spreadsheet row into an event.
type Transformer interface {
	Transform(row *sheet.Row, index int) (*models.Event, error)
}

// Publisher receives a copy of every calendar object written to disk.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) error
}

// Converter writes one calendar file per spreadsheet row.
type Converter struct {
	logger      *slog.Logger
	transformer Transformer
	outputDir   string
	publisher   Publisher
	out         io.Writer
	dryRun      bool
}

// Option customizes a Converter.
type Option func(*Converter)

// WithPublisher uploads each calendar object after it is written.
func WithPublisher(p Publisher) Option {
	return func(c *Converter) { c.publisher = p }
}

// WithOutput sets where "Wrote <path>" progress lines go. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Converter) { c.out = w }
}

// WithDryRun logs what would be written without touching disk or server.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// NewConverter creates a Converter writing into outputDir.
func NewConverter(logger *slog.Logger, t Transformer, outputDir string, opts ...Option) *Converter {
	c := &Converter{
		logger:      logger,
		transformer: t,
		outputDir:   outputDir,
		out:         os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run converts rows in order and returns the paths written.
// The first failing row aborts the run; earlier files stay on disk.
func (c *Converter) Run(ctx context.Context, rows []*sheet.Row) ([]string, error) {
	c.logger.Info("Starting conversion.", "rows", len(rows), "output", c.outputDir)

	if c.dryRun {
		c.logger.Info("Performing a dry run. No files will be written.")
	} else if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		index := i + 1
		path, err := c.convertRow(ctx, row, index)
		if path != "" {
			written = append(written, path)
		}
		if err != nil {
			return written, fmt.Errorf("row %d: %w", index, err)
		}
	}

	c.logger.Info("Conversion finished.", "files", len(written))
	return written, nil
}

// convertRow handles the logic for a single row.
func (c *Converter) convertRow(ctx context.Context, row *sheet.Row, index int) (string, error) {
	event, err := c.transformer.Transform(row, index)
	if err != nil {
		return "", err
	}

	data, err := ics.Encode(event)
	if err != nil {
		return "", err
	}
	name := ics.Filename(event.Title, index)

	if c.dryRun {
		c.logger.Info("[DRY RUN] Would write calendar file", "file", name, "title", event.Title, "startTime", event.StartTime)
		return "", nil
	}

	path, err := ics.WriteFile(c.outputDir, name, data)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Wrote calendar file", "path", path, "title", event.Title, "startTime", event.StartTime, "endTime", event.EndTime)

	fmt.Fprintf(c.out, "Wrote %s\n", path)

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, name, data); err != nil {
			return path, fmt.Errorf("failed to publish %s: %w", name, err)
		}
	}
	return path, nil
}
