// Package report renders the admin registrations export. Build is a pure
// function of the reporting rows; the encoders only serialize its output.
package report

import (
	"github.com/vyaparsetu/portal/internal/models"
)

const (
	Title          = "VyaparSetu Agents Registrations Report"
	FilenamePrefix = "VyaparSetu_Registrations"

	notAvailable = "N/A"
)

// Columns is the fixed export header.
var Columns = []string{
	"Agent",
	"Email",
	"Customer",
	"Shop",
	"Phone",
	"Customer Email",
	"GST",
	"DateTime",
	"Payment",
	"Documents",
}

// Cell is one table cell; Link is set for attachment references.
type Cell struct {
	Text string
	Link string
}

type Report struct {
	Title   string
	Columns []string
	Rows    [][]Cell
}

// LinkFunc returns the URL under which the named attachment of row is served.
type LinkFunc func(row models.ReportingRow, field string) string

// Attachment field names passed to LinkFunc.
const (
	FieldPaymentScreenshot = "paymentScreenshot"
	FieldOtherDocuments    = "otherDocuments"
)

// Build renders rows in the given order. Missing customer email, GST and
// date-time print as "N/A", as do absent attachments.
func Build(rows []models.ReportingRow, link LinkFunc) Report {
	rep := Report{
		Title:   Title,
		Columns: append([]string(nil), Columns...),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, r := range rows {
		rep.Rows = append(rep.Rows, []Cell{
			{Text: r.AgentName},
			{Text: r.AgentDisplay()},
			{Text: r.CustomerName},
			{Text: r.ShopName},
			{Text: r.Phone},
			{Text: orNA(r.Email)},
			{Text: orNA(r.GST)},
			{Text: orNA(r.RegistrationDateTime)},
			attachmentCell(r, r.HasPaymentScreenshot(), "View Payment", FieldPaymentScreenshot, link),
			attachmentCell(r, r.HasOtherDocuments(), "View Document", FieldOtherDocuments, link),
		})
	}
	return rep
}

// Filename is the download name for the given extension.
func Filename(ext string) string {
	return FilenamePrefix + "." + ext
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func attachmentCell(r models.ReportingRow, present bool, text, field string, link LinkFunc) Cell {
	if !present {
		return Cell{Text: notAvailable}
	}
	c := Cell{Text: text}
	if link != nil {
		c.Link = link(r, field)
	}
	return c
}
