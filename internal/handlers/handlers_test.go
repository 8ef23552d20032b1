package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/services"
)

func TestMakeFlash(t *testing.T) {
	cases := []struct {
		url      string
		kind     string
		text     string
		wantNone bool
	}{
		{url: "/admin?ok=mobile_saved", kind: "ok", text: "Agent number saved!"},
		{url: "/admin?error=mobile_empty", kind: "error", text: "Please enter a valid number!"},
		{url: "/dashboard?error=Something+odd", kind: "error", text: "Something odd"},
		{url: "/dashboard", wantNone: true},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		f := MakeFlash(r, "")
		if tc.wantNone {
			if f != nil {
				t.Errorf("%s: expected no flash, got %+v", tc.url, f)
			}
			continue
		}
		if f == nil || f.Kind != tc.kind || f.Text != tc.text {
			t.Errorf("%s: got %+v", tc.url, f)
		}
	}
}

func TestMakeFlash_HandlerError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/dashboard/registrations", nil)
	f := MakeFlash(r, "Could not save the registration. Please try again.")
	if f == nil || f.Kind != "error" || f.Text != "Could not save the registration. Please try again." {
		t.Fatalf("handler error should become the flash, got %+v", f)
	}
}

func TestMakeFlash_QueryWinsOverExplicit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?ok=logged_out", nil)
	f := MakeFlash(r, "explicit")
	if f == nil || f.Kind != "ok" {
		t.Fatalf("query flash should win, got %+v", f)
	}
}

func TestFmtRegistrationTime(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	if got := fmtRegistrationTime("2025-03-01T10:30", loc); got != "01 Mar 2025, 10:30" {
		t.Errorf("got %q", got)
	}
	if got := fmtRegistrationTime("yesterday", loc); got != "yesterday" {
		t.Errorf("unparseable value should pass through, got %q", got)
	}
}

func TestServeAttachment(t *testing.T) {
	reg := &models.Registration{
		PaymentScreenshot: services.EncodeDataURI("image/jpeg", []byte{0xff, 0xd8, 0xff}),
		OtherDocuments:    "data:broken",
	}

	rec := httptest.NewRecorder()
	serveAttachment(rec, httptest.NewRequest(http.MethodGet, "/", nil), reg, "paymentScreenshot")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("payment: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("nosniff header missing")
	}
	if rec.Body.Len() != 3 {
		t.Errorf("body length %d", rec.Body.Len())
	}

	rec = httptest.NewRecorder()
	serveAttachment(rec, httptest.NewRequest(http.MethodGet, "/", nil), reg, "otherDocuments")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("corrupt uri: expected 422, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	serveAttachment(rec, httptest.NewRequest(http.MethodGet, "/", nil), reg, "photo")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown field: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	serveAttachment(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil, "paymentScreenshot")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing registration: expected 404, got %d", rec.Code)
	}
}

func TestWriteEvent_MultilineData(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeEvent(rec, "snapshot", "<tr>\n<td>x</td>\n</tr>"); err != nil {
		t.Fatalf("writeEvent: %v", err)
	}
	want := "event: snapshot\ndata: <tr>\ndata: <td>x</td>\ndata: </tr>\n\n"
	if rec.Body.String() != want {
		t.Errorf("got %q", rec.Body.String())
	}
}

func TestAttachmentMessage(t *testing.T) {
	tooBig := &services.AttachmentError{Field: "paymentScreenshot", Err: services.ErrAttachmentTooLarge}
	if msg := attachmentMessage(tooBig); !strings.HasPrefix(msg, "Payment screenshot is too large") {
		t.Errorf("got %q", msg)
	}
	unreadable := &services.AttachmentError{Field: "otherDocuments", Err: errors.New("eof")}
	if msg := attachmentMessage(unreadable); !strings.HasPrefix(msg, "Other documents could not be read") {
		t.Errorf("got %q", msg)
	}
}

func TestSessionToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	r.Header.Set("Authorization", "Bearer abc-123")
	if got := sessionToken(r); got != "abc-123" {
		t.Errorf("bearer: got %q", got)
	}
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-tok"})
	if got := sessionToken(r); got != "cookie-tok" {
		t.Errorf("cookie should win, got %q", got)
	}
}
