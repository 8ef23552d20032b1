package models

import (
	"sort"
	"strings"
	"time"
)

// Field values of the registration enums.
const (
	GSTYes = "Yes"
	GSTNo  = "No"

	PaymentPending     = "Pending"
	PaymentPaidOffline = "Paid (Offline)"
	PaymentPaidOnline  = "Paid (Online)"

	DocumentPending   = "Pending"
	DocumentCollected = "Collected"
)

// Agent is one authenticated non-admin identity and everything it recorded.
// An empty string means the attribute is absent in the store.
type Agent struct {
	ID            string
	Email         string
	Mobile        string
	LastLogin     *time.Time
	Registrations map[string]Registration
}

// RegistrationIDs returns the registration ids in store order (ascending id).
func (a Agent) RegistrationIDs() []string {
	ids := make([]string, 0, len(a.Registrations))
	for id := range a.Registrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Registration is one customer shop-registration event. ID is the key in the
// owning agent's registrations mapping and is never part of the stored record.
type Registration struct {
	ID                   string `json:"id,omitempty" firestore:"-"`
	CustomerName         string `json:"customerName" firestore:"customerName"`
	ShopName             string `json:"shopName" firestore:"shopName"`
	Phone                string `json:"phone" firestore:"phone"`
	Email                string `json:"email,omitempty" firestore:"email,omitempty"`
	GST                  string `json:"gst,omitempty" firestore:"gst,omitempty"`
	RegistrationDateTime string `json:"registrationDateTime,omitempty" firestore:"registrationDateTime,omitempty"`
	PaymentStatus        string `json:"paymentStatus,omitempty" firestore:"paymentStatus,omitempty"`
	DocumentStatus       string `json:"documentStatus,omitempty" firestore:"documentStatus,omitempty"`
	PaymentScreenshot    string `json:"paymentScreenshot,omitempty" firestore:"paymentScreenshot,omitempty"`
	OtherDocuments       string `json:"otherDocuments,omitempty" firestore:"otherDocuments,omitempty"`
}

// Normalized fills the optional enum attributes with their defaults.
// registrationDateTime is left alone: a missing value stays missing.
func (r Registration) Normalized() Registration {
	if r.GST == "" {
		r.GST = GSTNo
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = PaymentPending
	}
	if r.DocumentStatus == "" {
		r.DocumentStatus = DocumentPending
	}
	return r
}

// IsPaid reports whether the payment status counts as paid ("Paid (Offline)", "Paid (Online)").
func (r Registration) IsPaid() bool {
	return strings.Contains(r.PaymentStatus, "Paid")
}

// DocumentsCollected mirrors the "Collected" vs other display rule.
func (r Registration) DocumentsCollected() bool {
	return strings.Contains(r.DocumentStatus, DocumentCollected)
}

func (r Registration) HasPaymentScreenshot() bool { return r.PaymentScreenshot != "" }
func (r Registration) HasOtherDocuments() bool    { return r.OtherDocuments != "" }

// AgentPatch names the agent fields a merge-update touches. Nil fields are left alone.
type AgentPatch struct {
	Email     *string
	Mobile    *string
	LastLogin *time.Time
}

// IsEmpty reports whether the patch names no field.
func (p AgentPatch) IsEmpty() bool {
	return p.Email == nil && p.Mobile == nil && p.LastLogin == nil
}

// Stats are the per-agent dashboard totals. Pending is always Total - Paid.
type Stats struct {
	Total   int `json:"total"`
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
}

// ReportingRow is a registration joined with its owning agent (admin views only).
type ReportingRow struct {
	Registration
	AgentName  string `json:"agentName"`
	AgentEmail string `json:"agentEmail,omitempty"`
	AgentUID   string `json:"agentUid"`
}

// AgentDisplay is the agent column text: the email, or the raw id when it is absent.
func (r ReportingRow) AgentDisplay() string {
	if r.AgentEmail != "" {
		return r.AgentEmail
	}
	return r.AgentUID
}
