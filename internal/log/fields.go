package log

import (
	"maps"
	"slices"
)

// Attribute keys shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldResource   = "resource"
	FieldEntryID    = "entry_id"
	FieldEntryName  = "entry_name"
	FieldCount      = "count"
	FieldFragment   = "fragment"
	FieldRoute      = "route"
	FieldGeneration = "generation"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentService   = "service"
	ComponentStorage   = "storage"
	ComponentWorker    = "worker"
	ComponentJournal   = "journal"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
	ComponentRouter    = "router"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSearch   = "search"
	OpPublish  = "publish"
	OpAppend   = "append"
	OpParse    = "parse"
	OpNavigate = "navigate"
)

// LogFields collects attributes for one record.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError is a no-op for a nil err.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntry records which resource entry was touched. The name is omitted
// when empty, as it is after a delete.
func (f LogFields) WithEntry(resource, id, name string) LogFields {
	f[FieldResource] = resource
	f[FieldEntryID] = id
	if name != "" {
		f[FieldEntryName] = name
	}
	return f
}

// WithHTTPRequest skips the optional query, user agent and referer when
// they are empty.
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	for key, v := range map[string]string{FieldQuery: query, FieldUserAgent: userAgent, FieldReferer: referer} {
		if v != "" {
			f[key] = v
		}
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice flattens the fields into slog key/value pairs, sorted by key so
// records are stable across runs.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		slice = append(slice, k, f[k])
	}
	return slice
}
