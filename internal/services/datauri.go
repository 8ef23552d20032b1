package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Attachment is a file picked in the registration form.
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ErrNotDataURI is returned when a stored attachment is not a data URI.
var ErrNotDataURI = errors.New("not a data URI")

// EncodeDataURI renders data as "data:<mediatype>;base64,<payload>".
func EncodeDataURI(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the media type and bytes of a data URI.
func DecodeDataURI(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	if meta == "" {
		meta = "text/plain;charset=US-ASCII"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data URI: %w", err)
		}
		return meta, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return meta, []byte(text), nil
}

// EncodeAttachment reads a into a data URI. No attachment encodes to "".
// Files larger than maxBytes (when positive) are rejected.
func EncodeAttachment(field string, a *Attachment, maxBytes int64) (string, error) {
	if a == nil || a.Body == nil {
		return "", nil
	}
	r := a.Body
	if maxBytes > 0 {
		r = io.LimitReader(a.Body, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &AttachmentError{Field: field, Err: err}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", &AttachmentError{Field: field, Err: ErrAttachmentTooLarge}
	}
	mediaType := strings.TrimSpace(a.ContentType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		if len(data) > 0 {
			mediaType = http.DetectContentType(data)
		} else {
			mediaType = "application/octet-stream"
		}
	}
	return EncodeDataURI(mediaType, data), nil
}
