package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

var fixedNow = time.Date(2025, 3, 1, 10, 30, 45, 0, time.UTC)

func newTestEditor(st store.Store) *Editor {
	return NewEditor(st, "u1", EditorOptions{
		MaxAttachmentBytes: 1 << 10,
		Now:                func() time.Time { return fixedNow },
	})
}

func filledDraft(d Draft) Draft {
	d.CustomerName = "Asha"
	d.ShopName = "Asha Stores"
	d.Phone = "9876543210"
	d.Email = "asha@example.com"
	return d
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft(fixedNow)
	if d.GST != "No" || d.PaymentStatus != "Pending" || d.DocumentStatus != "Pending" {
		t.Errorf("defaults: %+v", d)
	}
	if d.RegistrationDateTime != "2025-03-01T10:30" {
		t.Errorf("date-time default: %q", d.RegistrationDateTime)
	}
}

func TestDraftValidate(t *testing.T) {
	err := Draft{Phone: "12345678901", GST: "Maybe"}.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	for _, f := range []string{"customerName", "shopName", "email", "registrationDateTime", "phone", "gst"} {
		if verrs.For(f) == "" {
			t.Errorf("missing error for %s", f)
		}
	}
	if err := filledDraft(NewDraft(fixedNow)).Validate(); err != nil {
		t.Errorf("valid draft rejected: %v", err)
	}
}

func TestEditor_SubmitSuccess(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	e := newTestEditor(st)

	if e.State() != EditorIdle {
		t.Fatalf("new editor should be idle, got %s", e.State())
	}
	d := e.Open()
	if e.State() != EditorEditing {
		t.Fatalf("want editing, got %s", e.State())
	}
	if err := e.Update(filledDraft(d)); err != nil {
		t.Fatalf("update: %v", err)
	}
	_ = e.SelectPaymentScreenshot(&Attachment{ContentType: "image/png", Body: strings.NewReader("png-bytes")})

	id, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e.State() != EditorIdle || e.Draft() != (Draft{}) {
		t.Errorf("session should close and reset: %s %+v", e.State(), e.Draft())
	}

	a, _ := st.FetchAgent(ctx, "u1")
	got := a.Registrations[id]
	if got.CustomerName != "Asha" || got.GST != models.GSTNo || got.RegistrationDateTime != "2025-03-01T10:30" {
		t.Errorf("stored fields: %+v", got)
	}
	if got.PaymentScreenshot != EncodeDataURI("image/png", []byte("png-bytes")) {
		t.Errorf("payment screenshot: %q", got.PaymentScreenshot)
	}
	if got.OtherDocuments != "" {
		t.Errorf("no other documents selected, got %q", got.OtherDocuments)
	}
}

func TestEditor_ValidationBlocksStore(t *testing.T) {
	fs := &failingStore{Store: openTestStore(t)}
	e := newTestEditor(fs)
	e.Open()

	_, err := e.Submit(context.Background())
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	if fs.appends != 0 {
		t.Error("store called despite validation failure")
	}
	if e.State() != EditorEditing {
		t.Errorf("want editing, got %s", e.State())
	}
}

func TestEditor_StoreFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: openTestStore(t), failAppend: true}
	e := newTestEditor(fs)
	d := filledDraft(e.Open())
	_ = e.Update(d)
	_ = e.SelectOtherDocuments(&Attachment{ContentType: "application/pdf", Body: strings.NewReader("doc")})

	if _, err := e.Submit(ctx); !errors.Is(err, store.ErrIO) {
		t.Fatalf("want store i/o error, got %v", err)
	}
	if e.State() != EditorEditing || e.Draft() != d {
		t.Fatalf("draft lost after failure: %s %+v", e.State(), e.Draft())
	}

	// the retry reuses the already encoded file
	fs.failAppend = false
	id, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	a, _ := fs.FetchAgent(ctx, "u1")
	if a.Registrations[id].OtherDocuments != EncodeDataURI("application/pdf", []byte("doc")) {
		t.Errorf("attachment lost on retry: %q", a.Registrations[id].OtherDocuments)
	}
}

func TestEditor_AttachmentFailureKeepsDraft(t *testing.T) {
	fs := &failingStore{Store: openTestStore(t)}
	e := newTestEditor(fs)
	d := filledDraft(e.Open())
	_ = e.Update(d)
	_ = e.SelectPaymentScreenshot(&Attachment{Body: strings.NewReader(strings.Repeat("x", 2<<10))})

	_, err := e.Submit(context.Background())
	var aerr *AttachmentError
	if !errors.As(err, &aerr) || aerr.Field != "paymentScreenshot" {
		t.Fatalf("want AttachmentError, got %v", err)
	}
	if fs.appends != 0 || e.State() != EditorEditing || e.Draft() != d {
		t.Errorf("failed encode must not append and must keep the draft")
	}
}

// TestEditor_RetryAfterAttachmentFailure verifies a file that failed to encode
// is never submitted from its half-read stream.
func TestEditor_RetryAfterAttachmentFailure(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	e := newTestEditor(st)
	_ = e.Update(filledDraft(e.Open()))
	_ = e.SelectPaymentScreenshot(&Attachment{ContentType: "image/png", Body: strings.NewReader(strings.Repeat("x", 1024) + "TAIL")})

	if _, err := e.Submit(ctx); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("first submit: want ErrAttachmentTooLarge, got %v", err)
	}

	_, err := e.Submit(ctx)
	var aerr *AttachmentError
	if !errors.As(err, &aerr) || aerr.Field != "paymentScreenshot" || !errors.Is(err, ErrAttachmentReselect) {
		t.Fatalf("retry without a new file: want reselect error, got %v", err)
	}
	if a, _ := st.FetchAgent(ctx, "u1"); a != nil && len(a.Registrations) != 0 {
		t.Fatalf("nothing should be stored, got %d registrations", len(a.Registrations))
	}

	_ = e.SelectPaymentScreenshot(&Attachment{ContentType: "image/png", Body: strings.NewReader("small")})
	id, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("submit after reselect: %v", err)
	}
	a, _ := st.FetchAgent(ctx, "u1")
	_, data, err := DecodeDataURI(a.Registrations[id].PaymentScreenshot)
	if err != nil || string(data) != "small" {
		t.Errorf("stored payment: %q %v", data, err)
	}
}

func TestEditor_DropFailedAttachment(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	e := newTestEditor(st)
	_ = e.Update(filledDraft(e.Open()))
	_ = e.SelectOtherDocuments(&Attachment{Body: strings.NewReader(strings.Repeat("y", 2<<10))})

	if _, err := e.Submit(ctx); err == nil {
		t.Fatal("oversized file should fail")
	}
	_ = e.SelectOtherDocuments(nil)
	id, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("submit after removing the file: %v", err)
	}
	a, _ := st.FetchAgent(ctx, "u1")
	if a.Registrations[id].OtherDocuments != "" {
		t.Errorf("removed file was stored: %q", a.Registrations[id].OtherDocuments)
	}
}

func TestEditor_CloseDiscards(t *testing.T) {
	fs := &failingStore{Store: openTestStore(t)}
	e := newTestEditor(fs)
	_ = e.Update(filledDraft(e.Open()))
	e.Close()

	if e.State() != EditorIdle {
		t.Fatalf("want idle, got %s", e.State())
	}
	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrEditorState) {
		t.Fatalf("submit after close: %v", err)
	}
	if err := e.Update(Draft{}); !errors.Is(err, ErrEditorState) {
		t.Fatalf("update after close: %v", err)
	}
	if d := e.Open(); d.CustomerName != "" {
		t.Errorf("reopened draft should be fresh: %+v", d)
	}
	if fs.appends != 0 {
		t.Error("closing persisted something")
	}
}
