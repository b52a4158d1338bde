package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ContractDocument carries the fields rendered onto a confirmation PDF.
type ContractDocument struct {
	ContractNumber string
	MaterialName   string
	SupplierName   string
	BuyerName      string
	StrikePrice    string
	QuantityTons   string
	PremiumPaid    string
	DurationDays   int
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Generator renders option contract confirmations.
type Generator struct {
	headerColor [3]int
}

func NewGenerator() *Generator {
	return &Generator{headerColor: [3]int{68, 114, 196}}
}

// GenerateConfirmation renders a one-page confirmation document and
// returns the PDF bytes.
func (g *Generator) GenerateConfirmation(doc ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(g.headerColor[0], g.headerColor[1], g.headerColor[2])
	pdf.CellFormat(0, 10, "Option Contract Confirmation", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, fmt.Sprintf("Contract %s", doc.ContractNumber), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Buyer", doc.BuyerName},
		{"Material", doc.MaterialName},
		{"Supplier", doc.SupplierName},
		{"Strike Price (per ton)", "$" + doc.StrikePrice},
		{"Quantity (tons)", doc.QuantityTons},
		{"Premium Paid (total)", "$" + doc.PremiumPaid},
		{"Duration", fmt.Sprintf("%d days", doc.DurationDays)},
		{"Purchased", doc.CreatedAt.Format("January 2, 2006")},
		{"Expires", doc.ExpiresAt.Format("January 2, 2006")},
	}

	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(242, 242, 242)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(120, 8, row[1], "1", 1, "L", true, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5,
		"This contract locks the strike price shown above for the stated quantity until expiry. "+
			"Exercise on or before the expiration date to take delivery at the strike price. "+
			"Premiums are non-refundable.", "", "L", false)

	pdf.SetY(-25)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 MST")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render confirmation: %w", err)
	}
	return buf.Bytes(), nil
}
