package receipt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// TicketPDF writes a single-page e-ticket for r with the payment QR code
// embedded.
func (g *Generator) TicketPDF(w io.Writer, r Receipt) error {
	qr, err := qrcode.Encode(g.PaymentURI(r.Cost), qrcode.Medium, QRSize)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetAutoPageBreak(false, 0)

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 14, g.Theatre, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "E-TICKET", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING SUMMARY")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	seats := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = string(s)
	}
	for _, line := range []string{
		"Movie: " + r.Movie,
		"Date: " + r.Date.Format("2006-01-02"),
		"Seat Type: " + r.SeatType,
		"Seats: " + strings.Join(seats, ", "),
		fmt.Sprintf("Total Cost: %d Rs", r.Cost),
	} {
		pdf.SetX(20)
		pdf.Cell(0, 8, line)
		pdf.Ln(6)
	}

	pdf.RegisterImageOptionsReader("payment-qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("payment-qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 63)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Scan the QR code to pay with any UPI app.")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.CellFormat(0, 8, "Thank you for choosing "+g.Theatre+"!", "", 0, "C", false, 0, "")

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}
