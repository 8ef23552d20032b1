package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vyaparsetu/portal/internal/models"
	"github.com/vyaparsetu/portal/internal/store"
)

// EditorState is the registration editor's lifecycle position.
type EditorState int

const (
	EditorIdle EditorState = iota
	EditorEditing
	EditorSubmitting
)

func (s EditorState) String() string {
	switch s {
	case EditorIdle:
		return "idle"
	case EditorEditing:
		return "editing"
	case EditorSubmitting:
		return "submitting"
	}
	return "unknown"
}

// ErrEditorState is returned when an operation does not fit the current state.
var ErrEditorState = errors.New("editor: operation not allowed in current state")

// Draft is the form content of a registration being edited.
type Draft struct {
	CustomerName         string
	ShopName             string
	Phone                string
	Email                string
	GST                  string
	RegistrationDateTime string
	PaymentStatus        string
	DocumentStatus       string
}

// NewDraft returns the form defaults with the date-time set to now.
func NewDraft(now time.Time) Draft {
	return Draft{
		GST:                  models.GSTNo,
		RegistrationDateTime: now.Format(DateTimeLayout),
		PaymentStatus:        models.PaymentPending,
		DocumentStatus:       models.DocumentPending,
	}
}

// Validate checks required fields and the enum values offered by the form.
func (d Draft) Validate() error {
	var errs ValidationErrors
	required := []struct{ field, value, label string }{
		{"customerName", d.CustomerName, "Customer name"},
		{"shopName", d.ShopName, "Shop name"},
		{"phone", d.Phone, "Phone"},
		{"email", d.Email, "Email"},
		{"registrationDateTime", d.RegistrationDateTime, "Registration date and time"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldError{Field: f.field, Message: f.label + " is required."})
		}
	}
	if phoneTooLong(strings.TrimSpace(d.Phone)) {
		errs = append(errs, FieldError{Field: "phone", Message: "Phone must be at most 10 characters."})
	}
	switch d.GST {
	case "", models.GSTYes, models.GSTNo:
	default:
		errs = append(errs, FieldError{Field: "gst", Message: "GST must be Yes or No."})
	}
	switch d.PaymentStatus {
	case "", models.PaymentPending, models.PaymentPaidOffline, models.PaymentPaidOnline:
	default:
		errs = append(errs, FieldError{Field: "paymentStatus", Message: "Unknown payment status."})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d Draft) registration() models.Registration {
	return models.Registration{
		CustomerName:         d.CustomerName,
		ShopName:             d.ShopName,
		Phone:                d.Phone,
		Email:                d.Email,
		GST:                  d.GST,
		RegistrationDateTime: d.RegistrationDateTime,
		PaymentStatus:        d.PaymentStatus,
		DocumentStatus:       d.DocumentStatus,
	}
}

// EditorOptions tune an Editor.
type EditorOptions struct {
	MaxAttachmentBytes int64
	Location           *time.Location
	Now                func() time.Time
}

// Editor is one editing session for a new registration of a single agent.
//
//	Idle -> Editing -> Submitting -> Idle (success) | Editing (failure)
type Editor struct {
	store    store.Store
	agentID  string
	maxBytes int64
	loc      *time.Location
	now      func() time.Time

	mu      sync.Mutex
	state   EditorState
	draft   Draft
	payment *Attachment
	other   *Attachment

	// encoded forms survive a failed submit, the readers are already drained
	paymentURI, otherURI string
	// a selection that failed to encode is partly read; it must be replaced
	paymentStale, otherStale bool
}

func NewEditor(st store.Store, agentID string, opts EditorOptions) *Editor {
	e := &Editor{
		store:    st,
		agentID:  agentID,
		maxBytes: opts.MaxAttachmentBytes,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns the current draft.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Open starts editing with a default draft. An open session keeps its draft.
func (e *Editor) Open() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EditorIdle {
		e.draft = NewDraft(e.now().In(e.loc))
		e.clearFiles()
		e.state = EditorEditing
	}
	return e.draft
}

// Update replaces the draft while editing.
func (e *Editor) Update(d Draft) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EditorEditing {
		return ErrEditorState
	}
	e.draft = d
	return nil
}

// SelectPaymentScreenshot sets or clears (nil) the payment file.
func (e *Editor) SelectPaymentScreenshot(a *Attachment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EditorEditing {
		return ErrEditorState
	}
	e.payment, e.paymentURI, e.paymentStale = a, "", false
	return nil
}

// SelectOtherDocuments sets or clears (nil) the other-documents file.
func (e *Editor) SelectOtherDocuments(a *Attachment) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != EditorEditing {
		return ErrEditorState
	}
	e.other, e.otherURI, e.otherStale = a, "", false
	return nil
}

// Close discards the draft and pending files. Nothing is persisted.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == EditorSubmitting {
		return
	}
	e.state = EditorIdle
	e.draft = Draft{}
	e.clearFiles()
}

func (e *Editor) clearFiles() {
	e.payment, e.other = nil, nil
	e.paymentURI, e.otherURI = "", ""
	e.paymentStale, e.otherStale = false, false
}

// Submit validates the draft, encodes the payment file then the other
// documents, and appends the registration. On success the session closes and
// the new id is returned; on any failure the session stays in Editing with the
// draft intact.
func (e *Editor) Submit(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.state != EditorEditing {
		e.mu.Unlock()
		return "", ErrEditorState
	}
	if err := e.draft.Validate(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	if e.paymentStale {
		e.mu.Unlock()
		return "", &AttachmentError{Field: "paymentScreenshot", Err: ErrAttachmentReselect}
	}
	if e.otherStale {
		e.mu.Unlock()
		return "", &AttachmentError{Field: "otherDocuments", Err: ErrAttachmentReselect}
	}
	e.state = EditorSubmitting
	reg := e.draft.registration()
	reg.PaymentScreenshot, reg.OtherDocuments = e.paymentURI, e.otherURI
	payment, other := e.payment, e.other
	e.mu.Unlock()

	var err error
	if reg.PaymentScreenshot == "" {
		reg.PaymentScreenshot, err = EncodeAttachment("paymentScreenshot", payment, e.maxBytes)
	}
	if err == nil && reg.OtherDocuments == "" {
		reg.OtherDocuments, err = EncodeAttachment("otherDocuments", other, e.maxBytes)
	}
	var id string
	if err == nil {
		id, err = e.store.AppendRegistration(ctx, e.agentID, reg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.paymentURI, e.otherURI = reg.PaymentScreenshot, reg.OtherDocuments
		var aerr *AttachmentError
		if errors.As(err, &aerr) {
			switch aerr.Field {
			case "paymentScreenshot":
				e.payment, e.paymentStale = nil, true
			case "otherDocuments":
				e.other, e.otherStale = nil, true
			}
		}
		e.state = EditorEditing
		return "", err
	}
	e.state = EditorIdle
	e.draft = Draft{}
	e.clearFiles()
	return id, nil
}
