package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/icssync/internal"
)

const Platform = "google"

// AccountStore persists refreshed tokens.
type AccountStore interface {
	AddAccount(context.Context, *internal.Account) error
}

type Client struct {
	oauthCfg *oauth2.Config
	accounts AccountStore
	log      *internal.Logger

	mu       sync.Mutex
	services map[string]*calendar.Service

	// RetryWait and MaxRetries apply to rate limited list calls. Writes are
	// never retried.
	RetryWait  time.Duration
	MaxRetries int
	// Endpoint overrides the API base URL, used by tests.
	Endpoint string
}

func NewClient(credJSON []byte, accounts AccountStore, log *internal.Logger) (*Client, error) {
	oauthCfg, err := google.ConfigFromJSON(credJSON, calendar.CalendarEventsScope, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials file: %v", err)
	}

	return &Client{
		oauthCfg:   oauthCfg,
		accounts:   accounts,
		log:        log,
		services:   make(map[string]*calendar.Service),
		RetryWait:  defaultSleep,
		MaxRetries: 3,
	}, nil
}

const (
	defaultSleep = 5 * time.Second
	maxResults   = 2500
)

// Authorize checks the account token can reach the calendar.
func (c *Client) Authorize(ctx context.Context, cal *internal.Calendar) error {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return err
	}
	_, err = svc.Calendars.Get(cal.ProviderID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("google: calendar %s: %w", cal.ProviderID, err)
	}
	return nil
}

func (c *Client) ListSynced(ctx context.Context, cal *internal.Calendar, pageToken string) ([]*internal.RemoteEvent, string, error) {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return nil, "", err
	}
	call := svc.Events.
		List(cal.ProviderID).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(false).
		MaxResults(maxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := c.list(ctx, cal, call)
	if err != nil {
		return nil, "", err
	}
	res := make([]*internal.RemoteEvent, 0, len(events.Items))
	for _, item := range events.Items {
		// Edited instances of a series carry the series' icsUid too.
		if item.RecurringEventId != "" {
			continue
		}
		res = append(res, newRemoteEvent(item))
	}
	return res, events.NextPageToken, nil
}

func (c *Client) FindByExternalID(ctx context.Context, cal *internal.Calendar, externalID string) (*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return nil, err
	}
	call := svc.Events.
		List(cal.ProviderID).
		Context(ctx).
		ShowDeleted(false).
		PrivateExtendedProperty(internal.ExternalIDKey + "=" + externalID).
		SingleEvents(false).
		MaxResults(maxResults)

	events, err := c.list(ctx, cal, call)
	if err != nil {
		return nil, err
	}
	for _, item := range events.Items {
		if item.RecurringEventId == "" {
			return newRemoteEvent(item), nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", externalID, internal.ErrNotFound)
}

func (c *Client) list(ctx context.Context, cal *internal.Calendar, call *calendar.EventsListCall) (*calendar.Events, error) {
	for attempt := 0; ; attempt++ {
		events, err := call.Do()
		if err == nil {
			return events, nil
		}
		if !shouldRetry(err) || attempt >= c.MaxRetries {
			return nil, err
		}
		c.log.Debugf(cal, "google: rate limited, retrying in %s", c.RetryWait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.RetryWait):
		}
	}
}

func (c *Client) CreateEvent(ctx context.Context, cal *internal.Calendar, req internal.Event) (*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return nil, err
	}
	gevent, err := svc.Events.Insert(cal.ProviderID, newGoogleEvent(req)).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	return newRemoteEvent(gevent), nil
}

func (c *Client) UpdateEvent(ctx context.Context, cal *internal.Calendar, id string, req internal.Event) (*internal.RemoteEvent, error) {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return nil, err
	}
	gevent, err := svc.Events.Update(cal.ProviderID, id, newGoogleEvent(req)).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	return newRemoteEvent(gevent), nil
}

func (c *Client) DeleteEvent(ctx context.Context, cal *internal.Calendar, id string) error {
	svc, err := c.calendarSvc(ctx, cal.Account)
	if err != nil {
		return err
	}
	err = svc.Events.Delete(cal.ProviderID, id).Context(ctx).Do()
	if err != nil && !alreadyDeleted(err) {
		return err
	}
	return nil
}

type CalendarEntry struct {
	ID      string
	Summary string
	Primary bool
	Role    string
}

// Calendars lists the calendars the account can see.
func (c *Client) Calendars(ctx context.Context, acc internal.Account) ([]CalendarEntry, error) {
	svc, err := c.calendarSvc(ctx, acc)
	if err != nil {
		return nil, err
	}

	var res []CalendarEntry
	err = svc.CalendarList.List().Context(ctx).Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			res = append(res, CalendarEntry{
				ID:      item.Id,
				Summary: item.Summary,
				Primary: item.Primary,
				Role:    item.AccessRole,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Login runs the OAuth consent flow. open receives the URL the user must
// visit, the code is received on a local server listening on addr.
func (c *Client) Login(ctx context.Context, addr string, open func(authURL string)) ([]byte, error) {
	if addr == "" {
		addr = "localhost:8080"
	}
	c.oauthCfg.RedirectURL = "http://" + addr + "/icssync"

	state := fmt.Sprintf("icssync-%d", time.Now().UTC().Nanosecond())
	authURL := c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	open(authURL)

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	var (
		token   *oauth2.Token
		authErr error
	)

	mux.HandleFunc("/icssync", func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			go server.Shutdown(context.WithoutCancel(ctx))
		}()

		query := req.URL.Query()
		if query.Get("state") != state {
			authErr = errors.New("oauth link is not valid")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		token, authErr = c.oauthCfg.Exchange(ctx, query.Get("code"))
		if authErr != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintln(w, "Unable to retrieve token:", authErr)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "All good, you can close this window!")
	})

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	svrErr := server.ListenAndServe()
	if svrErr != nil && svrErr != http.ErrServerClosed {
		return nil, svrErr
	}
	if authErr != nil {
		return nil, authErr
	}
	if token == nil {
		return nil, ctx.Err()
	}
	return json.Marshal(token)
}

// Email returns the address of the account that owns authToken, which is
// the id of its primary calendar.
func (c *Client) Email(ctx context.Context, authToken []byte) (string, error) {
	var tok *oauth2.Token
	if err := json.Unmarshal(authToken, &tok); err != nil {
		return "", err
	}
	opts := []option.ClientOption{
		option.WithHTTPClient(c.oauthCfg.Client(ctx, tok)),
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return "", err
	}
	primary, err := svc.Calendars.Get("primary").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return primary.Id, nil
}

func (c *Client) calendarSvc(ctx context.Context, acc internal.Account) (*calendar.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if svc, ok := c.services[acc.ID()]; ok {
		return svc, nil
	}

	var tok *oauth2.Token
	err := json.Unmarshal([]byte(acc.Auth), &tok)
	if err != nil {
		return nil, fmt.Errorf("google: account %s has no valid token, run configure: %w", acc.ID(), err)
	}

	// The token source outlives the command context.
	ts := &savingTokenSource{
		base:     c.oauthCfg.TokenSource(context.WithoutCancel(ctx), tok),
		last:     tok,
		account:  acc,
		accounts: c.accounts,
		log:      c.log,
	}
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(context.WithoutCancel(ctx), ts)),
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	c.services[acc.ID()] = svc
	return svc, nil
}

// savingTokenSource stores the token again each time it is refreshed.
type savingTokenSource struct {
	base     oauth2.TokenSource
	account  internal.Account
	accounts AccountStore
	log      *internal.Logger

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last != nil && s.last.AccessToken == tok.AccessToken {
		return tok, nil
	}
	s.last = tok
	if s.accounts == nil {
		return tok, nil
	}

	auth, err := json.Marshal(tok)
	if err != nil {
		return tok, nil
	}
	acc := s.account
	acc.Auth = string(auth)
	if err := s.accounts.AddAccount(context.Background(), &acc); err != nil {
		s.log.Logf(nil, "google: unable to save refreshed token for %s: %v", acc.ID(), err)
	}
	return tok, nil
}

// wrapErr marks errors where Google refused the recurrence rule.
func wrapErr(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) || gErr.Code != http.StatusBadRequest {
		return err
	}
	if mentionsRecurrence(gErr.Message) {
		return fmt.Errorf("%w: %v", internal.ErrRecurrenceRejected, err)
	}
	for _, item := range gErr.Errors {
		if mentionsRecurrence(item.Reason) || mentionsRecurrence(item.Message) {
			return fmt.Errorf("%w: %v", internal.ErrRecurrenceRejected, err)
		}
	}
	return err
}

func mentionsRecurrence(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "recurrence") || strings.Contains(s, "rrule")
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusGone {
		return true
	}
	return errIsReason(err, "deleted")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
