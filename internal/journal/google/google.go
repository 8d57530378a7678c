// Package google writes the journal to a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"haushalt/internal/journal"
	"haushalt/internal/log"
)

// Credentials selects how the client authenticates. A service account wins
// over an OAuth client and user token.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

// Options configures the journal client.
type Options struct {
	SpreadsheetID string
	Sheet         string
	Credentials   Credentials
	Logger        *log.Logger

	// ClientOptions replace the credential based options; tests use them
	// to point the client at a fake endpoint.
	ClientOptions []goption.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

var _ journal.Writer = (*Client)(nil)

// New creates a Sheets journal client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheet = "Journal"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentJournal)

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		var err error
		clientOpts, err = credentialOptions(ctx, opts.Credentials, logger)
		if err != nil {
			return nil, err
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets journal ready", "spreadsheet_id", opts.SpreadsheetID, "sheet", sheet)

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheet:         sheet,
		logger:        logger,
	}, nil
}

func credentialOptions(ctx context.Context, c Credentials, logger *log.Logger) ([]goption.ClientOption, error) {
	saJSON, err := readSecret(c.ServiceAccountJSON, c.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	if saJSON != nil {
		logger.InfoContext(ctx, "Using service account credentials")
		return []goption.ClientOption{
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	}

	clientJSON, err := readSecret(c.OAuthClientJSON, c.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	tokenJSON, err := readSecret(c.OAuthTokenJSON, c.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	if clientJSON == nil || tokenJSON == nil {
		return nil, errors.New("missing credentials: need a service account or an OAuth client and token")
	}

	cfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	logger.InfoContext(ctx, "Using OAuth user token")
	base := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return []goption.ClientOption{goption.WithHTTPClient(cfg.Client(base, &tok))}, nil
}

// readSecret returns inline, or the content of file, or nil when both are
// empty.
func readSecret(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		return os.ReadFile(file)
	default:
		return nil, nil
	}
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Append adds row below the last row of the journal sheet and returns the
// range written.
func (c *Client) Append(ctx context.Context, row journal.Row) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	cells := row.Values()
	values := make([]any, len(cells))
	for i, v := range cells {
		values[i] = v
	}

	rng := fmt.Sprintf("%s!A:H", c.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Journal row appended",
		log.FieldOperation, log.OpAppend,
		log.FieldResource, row.Resource,
		log.FieldEntryID, row.ID,
		"range", ref)
	return ref, nil
}
