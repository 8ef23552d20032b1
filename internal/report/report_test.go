package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/vyaparsetu/portal/internal/models"
)

func sampleRows() []models.ReportingRow {
	return []models.ReportingRow{
		{
			Registration: models.Registration{
				ID: "01A", CustomerName: "Asha", ShopName: "Asha Stores", Phone: "9876543210",
				Email: "asha@example.com", GST: "Yes", RegistrationDateTime: "2025-03-01T10:30",
				PaymentScreenshot: "data:image/png;base64,AAAA",
			},
			AgentName: "Ravi", AgentEmail: "ravi@x.com", AgentUID: "u1",
		},
		{
			Registration: models.Registration{
				ID: "01B", CustomerName: "Kiran", ShopName: "Kiran & Sons", Phone: "9000000000",
				OtherDocuments: "data:application/pdf;base64,AAAA",
			},
			AgentName: "Unknown", AgentUID: "u2",
		},
	}
}

func testLink(r models.ReportingRow, field string) string {
	return "/admin/registrations/" + r.AgentUID + "/" + r.ID + "/" + field
}

func TestBuild(t *testing.T) {
	rep := Build(sampleRows(), testLink)
	if rep.Title != Title || len(rep.Columns) != 10 {
		t.Fatalf("header: %q %v", rep.Title, rep.Columns)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("row count: want 2, got %d", len(rep.Rows))
	}

	first := rep.Rows[0]
	if first[8].Text != "View Payment" || first[8].Link != "/admin/registrations/u1/01A/paymentScreenshot" {
		t.Errorf("payment cell: %+v", first[8])
	}
	if first[9].Text != "N/A" || first[9].Link != "" {
		t.Errorf("documents cell without attachment: %+v", first[9])
	}

	second := rep.Rows[1]
	if second[1].Text != "u2" {
		t.Errorf("agent email fallback: %q", second[1].Text)
	}
	for _, i := range []int{5, 6, 7, 8} {
		if second[i].Text != "N/A" {
			t.Errorf("column %s: want N/A, got %q", Columns[i], second[i].Text)
		}
	}
	if second[9].Text != "View Document" {
		t.Errorf("documents cell: %+v", second[9])
	}
}

func TestBuild_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := WriteHTML(&a, Build(sampleRows(), testLink)); err != nil {
		t.Fatal(err)
	}
	if err := WriteHTML(&b, Build(sampleRows(), testLink)); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Fatal("same rows rendered differently")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Build(sampleRows(), testLink)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(recs))
	}
	if strings.Join(recs[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header: %v", recs[0])
	}
	if recs[1][8] != "View Payment" || recs[2][8] != "N/A" {
		t.Errorf("payment column: %q %q", recs[1][8], recs[2][8])
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, Build(sampleRows(), testLink)); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>VyaparSetu Agents Registrations Report</title>",
		`<a href="/admin/registrations/u1/01A/paymentScreenshot">View Payment</a>`,
		"Kiran &amp; Sons",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}

	buf.Reset()
	_ = WriteHTML(&buf, Build(nil, nil))
	if !strings.Contains(buf.String(), `<td colspan="10">No data.</td>`) {
		t.Error("empty report should say so")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("csv"); got != "VyaparSetu_Registrations.csv" {
		t.Errorf("got %q", got)
	}
	if got := Filename("pdf"); got != "VyaparSetu_Registrations.pdf" {
		t.Errorf("got %q", got)
	}
}

func absLink(r models.ReportingRow, field string) string {
	return "https://portal.example" + testLink(r, field)
}

// plainPDF renders rep without stream compression so page text is searchable.
func plainPDF(t *testing.T, rep Report) (string, int) {
	t.Helper()
	doc := pdfDoc(rep)
	doc.SetCompression(false)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("pdf output: %v", err)
	}
	return buf.String(), doc.PageCount()
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, Build(sampleRows(), absLink)); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("not a PDF: %q", out[:min(len(out), 16)])
	}
	if n := strings.Count(out, "/S /URI"); n != 2 {
		t.Errorf("want 2 link annotations (one payment, one document), got %d", n)
	}
	for _, want := range []string{
		"https://portal.example/admin/registrations/u1/01A/paymentScreenshot",
		"https://portal.example/admin/registrations/u2/01B/otherDocuments",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing link %q", want)
		}
	}

	text, pages := plainPDF(t, Build(sampleRows(), absLink))
	if pages != 1 {
		t.Errorf("two rows should fit one page, got %d", pages)
	}
	for _, want := range []string{
		"(VyaparSetu Agents Registrations Report) Tj",
		"(Asha Stores) Tj",
		"(Kiran & Sons) Tj",
		"(View Payment) Tj",
		"(View Document) Tj",
	} {
		if strings.Count(text, want) != 1 {
			t.Errorf("want %q exactly once, got %d", want, strings.Count(text, want))
		}
	}
}

func TestWritePDF_PagesRepeatHeader(t *testing.T) {
	var rows []models.ReportingRow
	for i := 0; i < 60; i++ {
		r := sampleRows()[0]
		r.ID = fmt.Sprintf("%03d", i)
		r.CustomerName = fmt.Sprintf("Customer %03d", i)
		rows = append(rows, r)
	}
	text, pages := plainPDF(t, Build(rows, absLink))
	if pages < 2 {
		t.Fatalf("60 rows should span several pages, got %d", pages)
	}
	if n := strings.Count(text, "(Customer Email) Tj"); n != pages {
		t.Errorf("header should repeat on each of %d pages, found %d", pages, n)
	}
	for i := 0; i < 60; i++ {
		if !strings.Contains(text, fmt.Sprintf("(Customer %03d) Tj", i)) {
			t.Fatalf("row %d missing", i)
		}
	}
	if n := strings.Count(text, "/S /URI"); n != 60 {
		t.Errorf("want 60 link annotations, got %d", n)
	}
}

func TestWritePDF_Empty(t *testing.T) {
	text, _ := plainPDF(t, Build(nil, nil))
	if !strings.Contains(text, "(No data.) Tj") {
		t.Error("empty report should say so")
	}
}
