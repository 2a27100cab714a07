package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"roombook/internal/domains/booking/model"
	"roombook/shared/timezone"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	templateManagerRequested = "booking_requested_manager.html"
	templateUserRequested    = "booking_requested_user.html"
	templateStatusChanged    = "booking_status_changed.html"
	templateOTP              = "otp.html"

	dateLayout = "Jan 2, 2006"
	timeLayout = "3:04 PM"
)

var statusColors = map[model.Status]string{
	model.StatusApproved:  "green",
	model.StatusRejected:  "red",
	model.StatusCancelled: "orange",
}

type action struct {
	URL   string
	Label string
}

type bookingView struct {
	ID              string
	RoomName        string
	UserName        string
	UserEmail       string
	Purpose         string
	Date            string
	StartTime       string
	EndTime         string
	Status          string
	StatusColor     string
	RejectionReason string
	Action          action
}

type otpView struct {
	Code         string
	ValidMinutes int
}

func newBookingView(booking model.Booking, act action) bookingView {
	start := timezone.ToAppTime(booking.StartTime)
	end := timezone.ToAppTime(booking.EndTime)

	color, ok := statusColors[booking.Status]
	if !ok {
		color = "black"
	}

	view := bookingView{
		ID:          booking.ID,
		RoomName:    booking.RoomName,
		UserName:    booking.UserName,
		UserEmail:   booking.UserEmail,
		Purpose:     booking.Purpose,
		Date:        start.Format(dateLayout),
		StartTime:   start.Format(timeLayout),
		EndTime:     end.Format(timeLayout),
		Status:      string(booking.Status),
		StatusColor: color,
		Action:      act,
	}

	if booking.RejectionReason != nil {
		view.RejectionReason = *booking.RejectionReason
	}

	return view
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer

	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	return buf.String(), nil
}

func dashboardURL(publicURL string) string {
	return strings.TrimSuffix(publicURL, "/") + "/dashboard"
}

func trackURL(publicURL, bookingID string) string {
	return strings.TrimSuffix(publicURL, "/") + "/track?id=" + url.QueryEscape(bookingID)
}

func validMinutes(ttl time.Duration) int {
	return int(ttl.Minutes())
}
