// Package receipt renders booking and cancellation receipts, the UPI
// payment link with its QR image, and a printable PDF e-ticket.
package receipt

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Action is the verb printed on a receipt.
type Action string

const (
	Booking      Action = "booking"
	Cancellation Action = "cancellation"
)

// Title returns the action with its first letter upper-cased.
func (a Action) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Receipt is the content of one receipt.
type Receipt struct {
	Action   Action
	Movie    string
	Date     time.Time
	SeatType string
	Seats    []model.SeatID
	Cost     int
}

// QRSize is the edge length in pixels of payment QR images.
const QRSize = 256

// Generator produces receipts for one theatre and payee.
type Generator struct {
	Theatre string
	PayeeID string
	OutDir  string
}

// New returns a Generator configured from cfg.
func New(cfg config.ReceiptConfig) *Generator {
	return &Generator{Theatre: cfg.Theatre, PayeeID: cfg.PayeeID, OutDir: cfg.OutDir}
}

// Text renders r with the fixed receipt template.
func (g *Generator) Text(r Receipt) string {
	seats := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = string(s)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "===== %s =====\n", g.Theatre)
	fmt.Fprintf(&b, "Receipt for Ticket %s\n\n", r.Action.Title())
	fmt.Fprintf(&b, "Movie: %s\n", r.Movie)
	fmt.Fprintf(&b, "Date: %s\n", r.Date.Format(model.DateLayout))
	fmt.Fprintf(&b, "Seat Type: %s\n", r.SeatType)
	fmt.Fprintf(&b, "Seats: %s\n", strings.Join(seats, ", "))
	fmt.Fprintf(&b, "Total Cost: %d Rs\n\n", r.Cost)
	fmt.Fprintf(&b, "Thank you for choosing %s!\n", g.Theatre)
	b.WriteString(strings.Repeat("=", 39) + "\n")
	return b.String()
}

// PaymentURI is the UPI deep link for amount.
func (g *Generator) PaymentURI(amount int) string {
	return fmt.Sprintf("upi://%s?amount=%d&currency=INR&purpose=Payment", g.PayeeID, amount)
}

// QRFileName is the file name WritePaymentQR uses for amount.
func (g *Generator) QRFileName(amount int) string {
	return fmt.Sprintf("upi_qr_code_%s_%d.png", g.PayeeID, amount)
}

// WritePaymentQR encodes PaymentURI(amount) as a PNG under OutDir and
// returns the file path.
func (g *Generator) WritePaymentQR(amount int) (string, error) {
	path := filepath.Join(g.OutDir, g.QRFileName(amount))
	if err := qrcode.WriteFile(g.PaymentURI(amount), qrcode.Low, QRSize, path); err != nil {
		return "", fmt.Errorf("write payment qr: %w", err)
	}
	return path, nil
}
