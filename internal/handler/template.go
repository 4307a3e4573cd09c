package handler

import (
	"html/template"

	"event-banner/internal/models"
)

var templateFuncs = template.FuncMap{
	"isPhone": func(c models.ContactType) bool { return c == models.ContactPhone },
}
