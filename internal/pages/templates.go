// Package pages holds the list and edit screens of the client and the
// static route registry that builds them.
package pages

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"text/template"
	"time"

	"haushalt/internal/cache"
	"haushalt/internal/log"
	"haushalt/web"
)

// Templates loads page templates and stylesheets from an fs.FS and keeps
// the parsed templates in an LRU cache.
type Templates struct {
	templates fs.FS
	static    fs.FS
	parsed    *cache.LRUCache[*template.Template]
	logger    *log.Logger
}

// NewTemplates reads templates from templates/*.tmpl and stylesheets from
// static/*.css of the given file systems. Parsed templates are reparsed after
// ttl; zero keeps them for the life of the process.
func NewTemplates(templates, static fs.FS, ttl time.Duration, logger *log.Logger) *Templates {
	if logger == nil {
		logger = log.Discard()
	}
	return &Templates{
		templates: templates,
		static:    static,
		parsed:    cache.NewLRUCache[*template.Template](16, ttl),
		logger:    logger.WithComponent(log.ComponentTemplate),
	}
}

// DefaultTemplates serves the embedded web assets.
func DefaultTemplates(logger *log.Logger) *Templates {
	return NewTemplates(web.TemplatesFS, web.StaticFS, 0, logger)
}

// Load returns the parsed template name ("list", "edit").
func (t *Templates) Load(name string) (*template.Template, error) {
	return t.parsed.GetOrLoad(name, func() (*template.Template, error) {
		file := path.Join("templates", name+".tmpl")
		tpl, err := template.ParseFS(t.templates, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		t.logger.Debug("Template parsed", log.FieldOperation, log.OpParse, "template", file)
		return tpl, nil
	})
}

// Render executes template name with data.
func (t *Templates) Render(name string, data any) (string, error) {
	tpl, err := t.Load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Stylesheet returns the stylesheet of page name, or "" when there is none.
func (t *Templates) Stylesheet(name string) string {
	b, err := fs.ReadFile(t.static, path.Join("static", name+".css"))
	if err != nil {
		return ""
	}
	return string(b)
}

// CleanExpired drops parsed templates older than the ttl so the next Load
// rereads them. It makes Templates a cache.Cleaner.
func (t *Templates) CleanExpired() int {
	return t.parsed.CleanExpired()
}

// Stats exposes the template cache counters.
func (t *Templates) Stats() cache.Stats {
	return t.parsed.Stats()
}
