package handlers

import (
	"html/template"
	"time"

	"github.com/vyaparsetu/portal/internal/services"
)

// TemplateFuncs are the view helpers; date-times display in loc.
func TemplateFuncs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"year":        func() string { return time.Now().In(loc).Format("2006") },
		"fmtDateTime": func(t time.Time) string { return t.In(loc).Format("Mon, 02 Jan 2006 15:04") },
		"regDateTime": func(s string) string { return fmtRegistrationTime(s, loc) },
		"tel":         services.NormPhone,
	}
}

// fmtRegistrationTime renders a stored registrationDateTime, e.g.
// "01 Mar 2025, 10:30". Unparseable values are shown as stored.
func fmtRegistrationTime(s string, loc *time.Location) string {
	t, ok := services.ParseRegistrationTime(s, loc)
	if !ok {
		return s
	}
	return t.In(loc).Format("02 Jan 2006, 15:04")
}
