// Package web holds the browser page served by the game server.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// StaticFS returns a file system for serving /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses and returns the embedded templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(Assets, "templates/*.tmpl"))
}

// ChoiceButton is one of the three sign buttons on the page.
type ChoiceButton struct {
	Value string
	Label string
	Emoji string
}

// PageData is rendered by index.html.tmpl.
type PageData struct {
	Title   string
	Mode    string
	Choices []ChoiceButton
}
