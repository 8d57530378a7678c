// Package http exposes the bookkeeping resources over a JSON REST API.
//
// This file implements request body parsing. Bodies may be JSON objects or
// form-encoded; both produce the same core.Input.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"haushalt/internal/core"
)

// maxBodyBytes bounds request bodies; entries are a handful of short strings.
const maxBodyBytes = 1 << 20

var (
	errBodyTooLarge = errors.New("request body too large")
	errNotAnObject  = errors.New("request body must be a JSON object")
)

// RequestBodyParser reads the body once and exposes its fields by name.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes the body. An empty body is an empty entry.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.looksLikeJSON(trimmed) {
		if trimmed[0] != '{' {
			p.err = errNotAnObject
			return p.err
		}
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(trimmed, &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("decode form body: %w", p.err)
	}
	return p.err
}

func (p *RequestBodyParser) looksLikeJSON(body []byte) bool {
	if strings.Contains(strings.ToLower(p.contentType), "json") {
		return true
	}
	return body[0] == '{' || body[0] == '['
}

// Get returns the field value with falsy JSON values (null, false, 0, "")
// mapped to the empty string, which callers treat as "not provided". Any
// other value is returned exactly as sent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Input collects the editable entry fields from the body.
func (p *RequestBodyParser) Input() core.Input {
	return core.Input{
		Name:    p.Get(core.FieldName),
		Details: p.Get(core.FieldDetails),
		Amount:  p.Get(core.FieldAmount),
		Prio:    p.Get(core.FieldPrio),
	}
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue renders a decoded JSON value as an entry field.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if !val {
			return ""
		}
		return strconv.FormatBool(val)
	default:
		// objects and arrays are kept as their JSON text
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
