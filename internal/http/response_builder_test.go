package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/expense/1").
		JSON(map[string]string{"name": "Book"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/expense/1" {
		t.Errorf("Location = %q", got)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["name"] != "Book" {
		t.Errorf("body = %q (err %v)", w.Body.String(), err)
	}
}

func TestResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Error("Content-Type should not be set without a body")
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		builder    *ResponseBuilder
		wantStatus int
		wantCode   string
	}{
		{"not found", NotFoundError("gone"), http.StatusNotFound, CodeNotFound},
		{"invalid argument", InvalidArgumentError("bad id"), http.StatusBadRequest, CodeInvalidArgument},
		{"bad request", BadRequestError("bad body"), http.StatusBadRequest, CodeBadRequest},
		{"internal", InternalServerError(), http.StatusInternalServerError, CodeInternal},
		{"too many requests", TooManyRequestsError(), http.StatusTooManyRequests, CodeTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.Code != tt.wantCode || env.Message == "" {
				t.Errorf("envelope = %+v, want code %q", env, tt.wantCode)
			}
		})
	}
}
