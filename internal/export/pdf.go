package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nvraj/mandi/internal/core"
)

// PDFExporter exports sessions to PDF format.
type PDFExporter struct{}

// Export writes the session as PDF.
func (e *PDFExporter) Export(session *core.SessionRecord, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	// Add first page
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, fmt.Sprintf("Negotiation: %s", session.Context.Product), "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Session Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	id := session.ID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", id)
	e.addMetadataRow(pdf, "Status:", string(session.Status))
	e.addMetadataRow(pdf, "Rounds:", fmt.Sprintf("%d of %d", session.Rounds.Current, session.Rounds.Max))
	e.addMetadataRow(pdf, "Created:", session.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	if !session.CompletedAt.IsZero() {
		e.addMetadataRow(pdf, "Completed:", session.CompletedAt.Format("January 2, 2006 at 3:04 PM"))
		e.addMetadataRow(pdf, "Duration:", formatDuration(session.CreatedAt, session.CompletedAt))
	}
	pdf.Ln(5)

	// Product section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Product")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	e.addMetadataRow(pdf, "Name:", session.Context.Product)
	if session.Context.Variety != "" {
		e.addMetadataRow(pdf, "Variety:", session.Context.Variety)
	}
	e.addMetadataRow(pdf, "Order Size:", fmt.Sprintf("%d kg", session.Context.OrderSizeKG))
	e.addMetadataRow(pdf, "Grade:", session.Context.QualityGrade)
	e.addMetadataRow(pdf, "Origin:", session.Context.Origin)
	e.addMetadataRow(pdf, "Market Price:", fmt.Sprintf("Rs %d per quintal", session.Context.BaseMarketPrice))
	pdf.Ln(5)

	// Participants section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Participants")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	e.addParticipantBox(pdf, "Buyer", session.BuyerPersona, 200, 230, 255) // Light blue
	pdf.Ln(3)
	e.addParticipantBox(pdf, "Seller", session.SellerPersona, 200, 255, 200) // Light green
	pdf.Ln(8)

	// Transcript
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Transcript")
	pdf.Ln(8)

	if len(session.Messages) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No messages recorded.")
		pdf.Ln(6)
	} else {
		for i, msg := range session.Messages {
			// Check if we need a new page
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}

			// Message header with colored background
			switch msg.Sender {
			case core.SideBuyer:
				pdf.SetFillColor(200, 230, 255) // Light blue
			case core.SideSeller:
				pdf.SetFillColor(200, 255, 200) // Light green
			default:
				pdf.SetFillColor(230, 230, 230) // Grey
			}

			pdf.SetFont("Arial", "B", 10)
			header := fmt.Sprintf("Message %d - %s", i+1, msg.Sender)
			pdf.CellFormat(0, 7, header, "", 1, "", true, 0, "")

			// Message content
			pdf.SetFont("Arial", "", 9)
			pdf.SetFillColor(255, 255, 255)

			content := e.sanitizeText(msg.Text)
			pdf.MultiCell(0, 5, content, "", "", false)
			pdf.Ln(5)
		}
	}

	// Outcome
	if pdf.GetY() > 230 {
		pdf.AddPage()
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Outcome")
	pdf.Ln(8)

	switch session.Status {
	case core.StatusDeal:
		pdf.SetFillColor(200, 255, 200) // Light green
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Deal Reached", "", 1, "", true, 0, "")
	case core.StatusWalkedAway:
		pdf.SetFillColor(255, 200, 200) // Light red
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Walked Away", "", 1, "", true, 0, "")
	case core.StatusTimedOut:
		pdf.SetFillColor(255, 240, 200) // Light amber
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Timed Out", "", 1, "", true, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	e.addMetadataRow(pdf, "Opening:", formatPrice(session.Summary.OpeningPrice))
	e.addMetadataRow(pdf, "Final:", formatPrice(session.Summary.FinalPrice))
	e.addMetadataRow(pdf, "Market:", fmt.Sprintf("Rs %d per quintal", session.Summary.MarketPrice))
	if session.Summary.Margin != nil {
		e.addMetadataRow(pdf, "Margin:", fmt.Sprintf("Rs %d (%s)", *session.Summary.Margin, session.Summary.MarginType))
	} else {
		e.addMetadataRow(pdf, "Margin:", fmt.Sprintf("n/a (%s)", session.Summary.MarginType))
	}
	e.addMetadataRow(pdf, "Buyer Profit:", fmt.Sprintf("%.2f%%", session.Summary.BuyerProfitPercent))
	e.addMetadataRow(pdf, "Seller Profit:", fmt.Sprintf("%.2f%%", session.Summary.SellerProfitPercent))
	if session.Summary.Regret {
		e.addMetadataRow(pdf, "Regret:", "final price above market")
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from mandi", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Helper to add a participant box
func (e *PDFExporter) addParticipantBox(pdf *gofpdf.Fpdf, role, persona string, r, g, b int) {
	pdf.SetFillColor(r, g, b)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", role, persona), "", 1, "", true, 0, "")
}

func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	// Replace common Unicode characters that might cause issues
	replacer := strings.NewReplacer(
		"₹", "Rs ", // Rupee sign
		"‘", "'", // Left single quote
		"’", "'", // Right single quote
		"“", "\"", // Left double quote
		"”", "\"", // Right double quote
		"–", "-", // En dash
		"—", "--", // Em dash
		"…", "...", // Ellipsis
		"•", "*", // Bullet
		" ", " ", // Non-breaking space
	)
	return replacer.Replace(text)
}
