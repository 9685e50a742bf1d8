package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/nvraj/mandi/internal/core"
)

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct{}

// Export writes the session as Markdown.
func (e *MarkdownExporter) Export(session *core.SessionRecord, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString(fmt.Sprintf("# Negotiation: %s\n\n", session.Context.Product))

	// Metadata
	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", session.ID))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", session.Status))
	sb.WriteString(fmt.Sprintf("- **Rounds:** %d of %d\n", session.Rounds.Current, session.Rounds.Max))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", session.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	if !session.CompletedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Completed:** %s\n", session.CompletedAt.Format("January 2, 2006 at 3:04 PM")))
		sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", formatDuration(session.CreatedAt, session.CompletedAt)))
	}
	sb.WriteString("\n")

	// Product details
	sb.WriteString("## Product\n\n")
	sb.WriteString(fmt.Sprintf("- **Name:** %s\n", session.Context.Product))
	if session.Context.Variety != "" {
		sb.WriteString(fmt.Sprintf("- **Variety:** %s\n", session.Context.Variety))
	}
	sb.WriteString(fmt.Sprintf("- **Category:** %s\n", session.Context.Category))
	sb.WriteString(fmt.Sprintf("- **Order Size:** %d kg\n", session.Context.OrderSizeKG))
	sb.WriteString(fmt.Sprintf("- **Grade:** %s\n", session.Context.QualityGrade))
	sb.WriteString(fmt.Sprintf("- **Origin:** %s\n", session.Context.Origin))
	sb.WriteString(fmt.Sprintf("- **Base Market Price:** Rs %d per quintal\n", session.Context.BaseMarketPrice))
	sb.WriteString("\n")

	// Participants
	sb.WriteString("## Participants\n\n")
	sb.WriteString(fmt.Sprintf("- **Buyer:** %s\n", session.BuyerPersona))
	sb.WriteString(fmt.Sprintf("- **Seller:** %s\n", session.SellerPersona))
	sb.WriteString("\n")

	// Transcript
	sb.WriteString("## Transcript\n\n")
	if len(session.Messages) == 0 {
		sb.WriteString("*No messages recorded.*\n\n")
	} else {
		for _, msg := range session.Messages {
			sb.WriteString(fmt.Sprintf("**%s:** %s\n\n", msg.Sender, msg.Text))
		}
	}

	// Offer history
	if len(session.Offers) > 0 {
		sb.WriteString("## Offer History\n\n")
		sb.WriteString("| Round | Side | Price |\n")
		sb.WriteString("|-------|------|-------|\n")
		for _, off := range session.Offers {
			price := "-"
			if off.Price != nil {
				price = fmt.Sprintf("Rs %d", *off.Price)
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", off.Round, off.Sender, price))
		}
		sb.WriteString("\n")
	}

	// Outcome
	sb.WriteString("## Outcome\n\n")
	switch session.Status {
	case core.StatusDeal:
		sb.WriteString("**✅ Deal Reached**\n\n")
	case core.StatusWalkedAway:
		sb.WriteString("**❌ Walked Away**\n\n")
	case core.StatusTimedOut:
		sb.WriteString("**⏱ Timed Out**\n\n")
	}
	sb.WriteString(fmt.Sprintf("- **Opening Price:** %s\n", formatPrice(session.Summary.OpeningPrice)))
	sb.WriteString(fmt.Sprintf("- **Final Price:** %s\n", formatPrice(session.Summary.FinalPrice)))
	sb.WriteString(fmt.Sprintf("- **Market Price:** Rs %d per quintal\n", session.Summary.MarketPrice))
	if session.Summary.Margin != nil {
		sb.WriteString(fmt.Sprintf("- **Margin:** Rs %d (%s)\n", *session.Summary.Margin, session.Summary.MarginType))
	} else {
		sb.WriteString(fmt.Sprintf("- **Margin:** n/a (%s)\n", session.Summary.MarginType))
	}
	sb.WriteString(fmt.Sprintf("- **Buyer Profit:** %.2f%%\n", session.Summary.BuyerProfitPercent))
	sb.WriteString(fmt.Sprintf("- **Seller Profit:** %.2f%%\n", session.Summary.SellerProfitPercent))
	if session.Summary.Regret {
		sb.WriteString("- **Buyer Regret:** final price above market\n")
	}
	sb.WriteString("\n")

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from mandi*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
