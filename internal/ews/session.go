package ews

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ace-ecosystem/phishfry/internal/logging"
	"github.com/ace-ecosystem/phishfry/internal/metrics"
)

const (
	// DefaultServer is the Exchange Online endpoint used when an
	// account does not name its own server.
	DefaultServer = "outlook.office365.com"

	// DefaultVersion is the protocol version requested from the
	// server.
	DefaultVersion = "Exchange2016"

	// DefaultTimezone is the timezone context sent with every
	// request.
	DefaultTimezone = "UTC"

	// DefaultTimeout bounds each HTTP round trip.
	DefaultTimeout = 60 * time.Second
)

// SessionConfig holds the settings for one credential set.
type SessionConfig struct {
	User     string
	Pass     string
	Server   string
	Version  string
	Timezone string
	Timeout  time.Duration

	// Collector receives request metrics. Nil means no collection.
	Collector metrics.Collector
}

// Session wraps one credential set against one Exchange endpoint. It is
// immutable after construction; the embedded HTTP client may be shared
// by concurrent requests but a single remediation run is sequential.
type Session struct {
	user      string
	pass      string
	url       string
	version   string
	timezone  string
	client    *http.Client
	collector metrics.Collector
}

// NewSession creates a session from cfg, applying defaults for any
// unset optional field.
func NewSession(cfg SessionConfig) *Session {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	collector := cfg.Collector
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}
	return &Session{
		user:      cfg.User,
		pass:      cfg.Pass,
		url:       fmt.Sprintf("https://%s/EWS/Exchange.asmx", server),
		version:   version,
		timezone:  timezone,
		client:    &http.Client{Timeout: timeout},
		collector: collector,
	}
}

// URL returns the endpoint this session posts to.
func (s *Session) URL() string {
	return s.url
}

// send wraps op in a SOAP envelope, posts it with basic auth and
// returns the raw response body after checking its ResponseCode.
// impersonate, when non-empty, adds the ExchangeImpersonation header
// and the X-AnchorMailbox HTTP header.
func (s *Session) send(ctx context.Context, operation string, op any, impersonate string) ([]byte, error) {
	logger := logging.FromContext(ctx)

	env := newEnvelope(s.version, s.timezone, impersonate, op)
	data, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}
	body := xml.Header + string(data)
	logger.Debug("ews request", "operation", operation, "body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}
	req.SetBasicAuth(s.user, s.pass)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	if impersonate != "" {
		req.Header.Set("X-AnchorMailbox", impersonate)
	}

	s.collector.RequestStarted(operation)
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.collector.RequestCompleted(operation, "transport_error", time.Since(start))
		return nil, fmt.Errorf("sending %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.collector.RequestCompleted(operation, "transport_error", time.Since(start))
		return nil, fmt.Errorf("reading %s response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.collector.RequestCompleted(operation, "http_error", time.Since(start))
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}
	logger.Debug("ews response", "operation", operation, "body", string(respBody))

	if err := responseError(respBody); err != nil {
		s.collector.RequestCompleted(operation, "ews_error", time.Since(start))
		return nil, err
	}
	s.collector.RequestCompleted(operation, "ok", time.Since(start))
	return respBody, nil
}

// resolve issues ResolveNames for an SMTP address on this session.
// A reply without a Mailbox element means the address is unknown on
// this tenant.
func (s *Session) resolve(ctx context.Context, address string) (*Mailbox, error) {
	req := resolveNamesRequest{
		ReturnFullContactData: "false",
		UnresolvedEntry:       "smtp:" + address,
	}
	data, err := s.send(ctx, "ResolveNames", req, "")
	if err != nil {
		return nil, err
	}
	mb, err := findFirst[mailboxXML](data, typesNS, "Mailbox")
	if err != nil {
		return nil, err
	}
	if mb == nil || mb.EmailAddress == "" {
		return nil, ErrMailboxNotFound
	}
	return &Mailbox{
		session: s,
		Address: mb.EmailAddress,
		Type:    MailboxType(mb.MailboxType),
	}, nil
}
