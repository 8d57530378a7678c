package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"haushalt/internal/journal"
	"haushalt/internal/log"
)

type fakeSheets struct {
	mu       sync.Mutex
	paths    []string
	queries  []string
	bodies   []gsheet.ValueRange
	failWith int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.failWith)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"unable to parse range"}}`))
		return
	}

	var vr gsheet.ValueRange
	_ = json.NewDecoder(r.Body).Decode(&vr)
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.queries = append(f.queries, r.URL.RawQuery)
	f.bodies = append(f.bodies, vr)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Journal!A2:H2","updatedRows":1}}`))
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-id",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(ts.URL + "/"),
			goption.WithoutAuthentication(),
			goption.WithHTTPClient(ts.Client()),
		},
	})
	require.NoError(t, err)
	return c
}

func TestAppendWritesRow(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	row := journal.Row{
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Resource: "expense",
		Op:       "create",
		ID:       "abc",
		Name:     "Book",
		Amount:   "12",
	}
	ref, err := c.Append(context.Background(), row)
	require.NoError(t, err)
	assert.Equal(t, "Journal!A2:H2", ref)

	require.Len(t, fake.paths, 1)
	assert.True(t, strings.HasPrefix(fake.paths[0], "POST "), fake.paths[0])
	assert.Contains(t, fake.paths[0], "/spreadsheets/sheet-id/values/")
	assert.True(t, strings.HasSuffix(fake.paths[0], ":append"), fake.paths[0])
	assert.Contains(t, fake.queries[0], "valueInputOption=RAW")
	assert.Contains(t, fake.queries[0], "insertDataOption=INSERT_ROWS")

	require.Len(t, fake.bodies[0].Values, 1)
	assert.Equal(t,
		[]any{"2024-01-02T03:04:05Z", "expense", "create", "abc", "Book", "", "12", ""},
		fake.bodies[0].Values[0])
}

func TestAppendSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t, &fakeSheets{failWith: http.StatusBadRequest})

	_, err := c.Append(context.Background(), journal.Row{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append to sheet Journal")
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.EqualError(t, err, "missing spreadsheet id")
}

func TestCredentialOptions(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"access_token":"t","token_type":"Bearer"}`), 0o600))
	clientJSON := `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{name: "nothing", creds: Credentials{}, wantErr: "missing credentials"},
		{name: "client without token", creds: Credentials{OAuthClientJSON: clientJSON}, wantErr: "missing credentials"},
		{name: "invalid client", creds: Credentials{OAuthClientJSON: "invalid-json", OAuthTokenFile: tokenFile}, wantErr: "oauth config"},
		{name: "missing token file", creds: Credentials{OAuthClientJSON: clientJSON, OAuthTokenFile: filepath.Join(dir, "nope.json")}, wantErr: "read oauth token"},
		{name: "client and token", creds: Credentials{OAuthClientJSON: clientJSON, OAuthTokenFile: tokenFile}},
		{name: "service account", creds: Credentials{ServiceAccountJSON: `{"type":"service_account"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := credentialOptions(context.Background(), tt.creds, log.Discard())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, opts)
		})
	}
}
