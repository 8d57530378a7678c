package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"haushalt/internal/core"
)

func newParser(contentType, body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/expense", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(req)
}

func TestRequestBodyParser_Input(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        core.Input
		wantJSON    bool
	}{
		{
			name:        "json object",
			contentType: "application/json",
			body:        `{"name":"Book","amount":"20"}`,
			want:        core.Input{Name: "Book", Amount: "20"},
			wantJSON:    true,
		},
		{
			name:     "json without content type",
			body:     `{"details":"gift"}`,
			want:     core.Input{Details: "gift"},
			wantJSON: true,
		},
		{
			name:        "falsy json values are not provided",
			contentType: "application/json",
			body:        `{"name":"","details":null,"amount":0,"prio":false}`,
			want:        core.Input{},
			wantJSON:    true,
		},
		{
			name:        "truthy non-strings are stringified",
			contentType: "application/json",
			body:        `{"name":"Rent","amount":12.5,"prio":true}`,
			want:        core.Input{Name: "Rent", Amount: "12.5", Prio: "true"},
			wantJSON:    true,
		},
		{
			name:        "form encoded",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=Book&amount=20&prio=",
			want:        core.Input{Name: "Book", Amount: "20"},
		},
		{
			name:        "values kept as sent",
			contentType: "application/json",
			body:        `{"name":"  Bo\u0007ok\n","details":"\tgift"}`,
			want:        core.Input{Name: "  Bo\aok\n", Details: "\tgift"},
			wantJSON:    true,
		},
		{
			name: "empty body",
			body: "",
			want: core.Input{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(tt.contentType, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Input(); got != tt.want {
				t.Errorf("Input() = %+v, want %+v", got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     error
	}{
		{"malformed json", "application/json", `{"name":`, nil},
		{"json array", "application/json", `[1,2]`, errNotAnObject},
		{"json scalar", "application/json", `"Book"`, errNotAnObject},
		{"too large", "application/json", `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, errBodyTooLarge},
		{"bad form escape", "application/x-www-form-urlencoded", "name=%zz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newParser(tt.contentType, tt.body).Parse()
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseIsMemoized(t *testing.T) {
	p := newParser("application/json", `{"name":`)
	first := p.Parse()
	if first == nil || p.Parse() != first {
		t.Error("Parse should return the same error on repeated calls")
	}
}
