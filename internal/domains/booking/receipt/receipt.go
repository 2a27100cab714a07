// Package receipt renders booking slips as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/shared/timezone"

	"github.com/phpdave11/gofpdf"
)

const (
	dateLayout   = "Mon, Jan 2, 2006"
	timeLayout   = "3:04 PM"
	issuedLayout = "2006-01-02 15:04 MST"

	defaultTitle = "Room Booking"
)

var statusColors = map[model.Status][3]int{
	model.StatusPending:   {180, 120, 0},
	model.StatusApproved:  {0, 128, 0},
	model.StatusRejected:  {200, 0, 0},
	model.StatusCancelled: {230, 120, 0},
}

type Slip struct {
	Title    string
	Booking  model.Booking
	IssuedAt time.Time
}

// Render lays out a single A4 page and returns the encoded PDF.
func Render(slip Slip) ([]byte, error) {
	b := slip.Booking
	start := timezone.ToAppTime(b.StartTime)
	end := timezone.ToAppTime(b.EndTime)

	title := slip.Title
	if title == "" {
		title = defaultTitle
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking "+b.ID, false)
	pdf.SetCreator(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Booking Slip")
	pdf.Ln(12)

	rows := [][2]string{
		{"Booking ID", b.ID},
		{"Room", b.RoomName},
		{"Requested by", fmt.Sprintf("%s (%s)", b.UserName, b.UserEmail)},
		{"Date", start.Format(dateLayout)},
		{"Time", fmt.Sprintf("%s - %s", start.Format(timeLayout), end.Format(timeLayout))},
	}

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 7, row[1])
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(40, 7, "Purpose", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 7, b.Purpose, "", "L", false)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(40, 7, "Status", "", 0, "L", false, 0, "")

	color := statusColors[b.Status]
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.Cell(0, 7, string(b.Status))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(7)

	if b.RejectionReason != nil && *b.RejectionReason != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(40, 7, "Reason", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 7, *b.RejectionReason, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Issued "+timezone.ToAppTime(slip.IssuedAt).Format(issuedLayout))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	return buf.Bytes(), nil
}

// FileName is the download name of a booking's slip.
func FileName(bookingID string) string {
	return fmt.Sprintf("booking-%s.pdf", bookingID)
}
