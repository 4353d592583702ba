package handler

import (
	"html/template"
	"time"

	"github.com/dukerupert/addressbook/internal/address"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
		"formatAddress": address.Format,
	}
}
