package web

import "embed"

// TemplatesFS embeds the page and its htmx partials.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the chart/theme script.
//go:embed static/*
var StaticFS embed.FS
