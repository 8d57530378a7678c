// Package web embeds the page templates and stylesheets of the terminal
// client.
package web

import "embed"

// TemplatesFS embeds the page templates.
//
//go:embed templates/*.tmpl
var TemplatesFS embed.FS

// StaticFS embeds the page stylesheets.
//
//go:embed static/*.css
var StaticFS embed.FS
