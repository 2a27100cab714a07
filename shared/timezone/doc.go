// Package timezone pins wall-clock rendering to the zone named by APP_TIMEZONE.
//
// Booking windows are stored and compared as instants, so conflict checks and the
// expiry cutoff never depend on this package. It only decides how an instant is
// shown to people: the JSON timestamps, the email bodies and the PDF receipt.
//
//	start := timezone.ToAppTime(booking.StartTime)
//	label := timezone.Format(booking.CreatedAt, time.RFC3339)
//
// An unknown or empty zone name falls back to UTC with a warning.
package timezone
