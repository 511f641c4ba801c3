package publish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBackend is a read-mostly caldav.Backend holding a fixed set of calendars.
type memBackend struct {
	principal string
	homeSet   string
	calendars []caldav.Calendar
}

func (b *memBackend) CurrentUserPrincipal(ctx context.Context) (string, error) {
	return b.principal, nil
}

func (b *memBackend) CalendarHomeSetPath(ctx context.Context) (string, error) {
	return b.homeSet, nil
}

func (b *memBackend) CreateCalendar(ctx context.Context, calendar *caldav.Calendar) error {
	b.calendars = append(b.calendars, *calendar)
	return nil
}

func (b *memBackend) ListCalendars(ctx context.Context) ([]caldav.Calendar, error) {
	return b.calendars, nil
}

func (b *memBackend) GetCalendar(ctx context.Context, path string) (*caldav.Calendar, error) {
	for i := range b.calendars {
		if b.calendars[i].Path == path {
			return &b.calendars[i], nil
		}
	}
	return nil, os.ErrNotExist
}

func (b *memBackend) GetCalendarObject(ctx context.Context, path string, req *caldav.CalendarCompRequest) (*caldav.CalendarObject, error) {
	return nil, os.ErrNotExist
}

func (b *memBackend) ListCalendarObjects(ctx context.Context, path string, req *caldav.CalendarCompRequest) ([]caldav.CalendarObject, error) {
	return nil, nil
}

func (b *memBackend) QueryCalendarObjects(ctx context.Context, path string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error) {
	return nil, nil
}

func (b *memBackend) PutCalendarObject(ctx context.Context, path string, calendar *ical.Calendar, opts *caldav.PutCalendarObjectOptions) (*caldav.CalendarObject, error) {
	return &caldav.CalendarObject{Path: path, Data: calendar}, nil
}

func (b *memBackend) DeleteCalendarObject(ctx context.Context, path string) error {
	return nil
}

// newCalDAVServer serves backend through go-webdav's CalDAV handler behind Basic Auth.
func newCalDAVServer(t *testing.T, backend caldav.Backend) *httptest.Server {
	t.Helper()
	handler := &caldav.Handler{Backend: backend}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newMemBackend() *memBackend {
	return &memBackend{
		principal: "/alice/",
		homeSet:   "/alice/calendars/",
		calendars: []caldav.Calendar{
			{Path: "/alice/calendars/home/", Name: "Home", SupportedComponentSet: []string{ical.CompEvent}},
			{Path: "/alice/calendars/gigs/", Name: "Gigs", SupportedComponentSet: []string{ical.CompEvent}},
		},
	}
}

func TestNewPublisherDiscoversCalendarByName(t *testing.T) {
	srv := newCalDAVServer(t, newMemBackend())

	p, err := NewPublisher(context.Background(), testLogger(), Options{
		Endpoint:     srv.URL + "/",
		Username:     "alice",
		Password:     "secret",
		CalendarName: "gigs",
	})
	require.NoError(t, err)
	assert.Equal(t, "/alice/calendars/gigs/", p.calendarPath)
}

func TestNewPublisherCalendarNotFound(t *testing.T) {
	srv := newCalDAVServer(t, newMemBackend())

	_, err := NewPublisher(context.Background(), testLogger(), Options{
		Endpoint:     srv.URL + "/",
		Username:     "alice",
		Password:     "secret",
		CalendarName: "Work",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no calendar found with name 'Work'")
	assert.ErrorContains(t, err, "Home")
}

func TestNewPublisherDiscoveryUnauthorized(t *testing.T) {
	srv := newCalDAVServer(t, newMemBackend())

	_, err := NewPublisher(context.Background(), testLogger(), Options{
		Endpoint:     srv.URL + "/",
		Username:     "alice",
		Password:     "wrong",
		CalendarName: "Home",
	})
	assert.ErrorContains(t, err, "failed to find principal path")
}
