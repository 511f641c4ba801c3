package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// Options selects the CalDAV server and calendar collection to publish into.
type Options struct {
	Endpoint string
	Username string
	Password string
	// CalendarPath is the collection path on the server, e.g. /123/calendars/home/.
	// When empty the collection is discovered by CalendarName.
	CalendarPath string
	CalendarName string
}

// basicAuthTransport adds Basic Auth and a User-Agent to each request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	req.Header.Set("User-Agent", "sheet2ics/1.0")
	return t.Transport.RoundTrip(req)
}

// Publisher uploads calendar objects into a CalDAV collection.
type Publisher struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	calendarPath string
}

// NewPublisher connects to the server and resolves the target collection.
func NewPublisher(ctx context.Context, logger *slog.Logger, opts Options) (*Publisher, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("caldav endpoint is empty")
	}
	transport := &basicAuthTransport{
		Username:  opts.Username,
		Password:  opts.Password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	p := &Publisher{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		calendarPath: opts.CalendarPath,
	}

	if p.calendarPath == "" {
		if opts.CalendarName == "" {
			return nil, fmt.Errorf("either a calendar path or a calendar name is required")
		}
		logger.Info("Finding CalDAV calendar", "calendarName", opts.CalendarName)
		calendarPath, err := p.findCalendar(ctx, opts.CalendarName)
		if err != nil {
			return nil, fmt.Errorf("could not find calendar '%s': %w", opts.CalendarName, err)
		}
		p.calendarPath = calendarPath
	}
	logger.Info("Publishing to CalDAV calendar", "path", p.calendarPath)

	return p, nil
}

// Publish stores data as the calendar object name inside the collection,
// replacing any object of the same name.
func (p *Publisher) Publish(ctx context.Context, name string, data []byte) error {
	objectPath := path.Join("/", strings.TrimPrefix(p.calendarPath, "/"), name)
	p.logger.Debug("Uploading calendar object", "path", objectPath, "bytes", len(data))

	writer, err := p.webdavClient.Create(ctx, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create calendar object on CalDAV server: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to upload calendar object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload calendar object: %w", err)
	}

	p.logger.Info("Published calendar object", "path", objectPath)
	return nil
}

// findCalendar walks principal, home set and calendar list, and returns the
// path of the calendar whose display name matches name, ignoring case.
func (p *Publisher) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := p.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := p.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	p.logger.Debug("Resolved CalDAV home set", "principal", principalPath, "homeSet", homeSetPath)

	calendars, err := p.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	names := make([]string, 0, len(calendars))
	for _, cal := range calendars {
		if strings.EqualFold(strings.TrimSpace(cal.Name), strings.TrimSpace(name)) {
			return cal.Path, nil
		}
		names = append(names, cal.Name)
	}

	return "", fmt.Errorf("no calendar found with name '%s' (available: %s)", name, strings.Join(names, ", "))
}
