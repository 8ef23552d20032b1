package handlers

import (
	"net/http"
	"strings"
)

type Flash struct {
	Kind string // "ok" or "error"
	Text string
}

var okText = map[string]string{
	"registered":   "Registration saved.",
	"deleted":      "Registration deleted.",
	"mobile_saved": "Agent number saved!",
	"logged_out":   "You have been logged out.",
}

var errText = map[string]string{
	"mobile_empty":  "Please enter a valid number!",
	"mobile_failed": "Could not save the agent number. Please try again.",
	"delete_failed": "Could not delete the registration. Please try again.",
	"not_confirmed": "Deletion was not confirmed.",
	"load_failed":   "Could not load data. Showing an empty view.",
	"not_found":     "Registration not found.",
}

// MakeFlash reads ?ok= / ?error= and falls back to the handler's own error text.
func MakeFlash(r *http.Request, errStr string) *Flash {
	q := r.URL.Query()
	errRaw := strings.TrimSpace(q.Get("error"))
	okRaw := strings.TrimSpace(q.Get("ok"))

	if errRaw != "" {
		if t, ok := errText[strings.ToLower(errRaw)]; ok {
			return &Flash{Kind: "error", Text: t}
		}
		return &Flash{Kind: "error", Text: errRaw}
	}
	if okRaw != "" {
		if t, ok := okText[strings.ToLower(okRaw)]; ok {
			return &Flash{Kind: "ok", Text: t}
		}
		return &Flash{Kind: "ok", Text: okRaw}
	}

	if errStr != "" {
		return &Flash{Kind: "error", Text: errStr}
	}
	return nil
}
