package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nvraj/mandi/internal/core"
)

func sampleSession() *core.SessionRecord {
	created := time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC)
	return &core.SessionRecord{
		ID: "abc12345-0000-0000-0000-000000000000",
		Context: core.NegotiationContext{
			Product:         "Alphonso Mangoes",
			Category:        "Fruits",
			OrderSizeKG:     500,
			QualityGrade:    "A",
			Origin:          "Ratnagiri",
			BaseMarketPrice: 18000,
		},
		BuyerPersona:  "Diplomatic",
		SellerPersona: "Analytical",
		Status:        core.StatusDeal,
		Messages: []core.Message{
			{Sender: core.SideBuyer, Text: "What's your offer?"},
			{Sender: core.SideSeller, Text: "I can offer ₹21600 per quintal."},
			{Sender: core.SideBuyer, Text: "Deal at ₹17500 per quintal."},
		},
		Offers: []core.OfferRecord{
			{Round: 1, Sender: core.SideSeller, Price: core.IntPtr(21600), Text: "I can offer ₹21600 per quintal."},
		},
		Rounds:     core.RoundInfo{Current: 5, Max: 15},
		FinalPrice: core.IntPtr(17500),
		Summary: core.Outcome{
			OpeningPrice:        core.IntPtr(21600),
			FinalPrice:          core.IntPtr(17500),
			MarketPrice:         18000,
			Margin:              core.IntPtr(500),
			MarginType:          core.MarginProfit,
			BuyerProfitPercent:  2.78,
			SellerProfitPercent: 7.22,
			TotalRounds:         5,
		},
		CreatedAt:   created,
		CompletedAt: created.Add(45 * time.Second),
	}
}

func TestGetExporter(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatMarkdown, FormatPDF} {
		if _, err := GetExporter(format); err != nil {
			t.Errorf("GetExporter(%s) failed: %v", format, err)
		}
	}
	if _, err := GetExporter("docx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	e := &JSONExporter{}
	if err := e.Export(sampleSession(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded core.SessionRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ID != sampleSession().ID {
		t.Errorf("ID = %s", decoded.ID)
	}
	if decoded.FinalPrice == nil || *decoded.FinalPrice != 17500 {
		t.Errorf("final price = %v, want 17500", decoded.FinalPrice)
	}
	if e.FileExtension() != "json" {
		t.Errorf("extension = %s", e.FileExtension())
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	e := &MarkdownExporter{}
	if err := e.Export(sampleSession(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Negotiation: Alphonso Mangoes",
		"Deal Reached",
		"**Buyer:** Diplomatic",
		"**Seller:** Analytical",
		"Rs 17500 per quintal",
		"| 1 | Seller | Rs 21600 |",
		"I can offer ₹21600 per quintal.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if e.FileExtension() != "md" {
		t.Errorf("extension = %s", e.FileExtension())
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	e := &PDFExporter{}
	if err := e.Export(sampleSession(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if e.FileExtension() != "pdf" {
		t.Errorf("extension = %s", e.FileExtension())
	}
}

func TestGenerateFilename(t *testing.T) {
	got := GenerateFilename(sampleSession(), "md")
	if got != "negotiation_20260812_Alphonso_Mangoes.md" {
		t.Errorf("filename = %s", got)
	}
}

func TestSanitizeText(t *testing.T) {
	e := &PDFExporter{}
	got := e.sanitizeText("₹18000 — a “fair” price…")
	if strings.ContainsRune(got, '₹') {
		t.Errorf("rupee sign not replaced: %q", got)
	}
	if !strings.Contains(got, "Rs 18000") {
		t.Errorf("sanitized = %q", got)
	}
}
