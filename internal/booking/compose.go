package booking

import (
	"strings"

	"github.com/belmontfield/dispatch/internal/domain"
)

func composeSummary(req domain.BookingRequest) string {
	symptom := req.Job.Symptom
	if symptom == "" {
		symptom = "Service"
	}
	name := req.Customer.FullName
	if name == "" {
		name = "Customer"
	}
	return "HVAC " + symptom + " - " + name
}

func composeDescription(req domain.BookingRequest) string {
	lines := []string{
		"Phone: " + req.Customer.Phone,
		"Email: " + NormalizeEmail(req.Customer.Email),
		"Address: " + req.Location.AddressLine1 + ", " + req.Location.City + " " + req.Location.Zip,
		"Notes: " + req.Job.IssueSummary,
	}
	return strings.Join(lines, "\n")
}

// NormalizeEmail collapses spoken-style addresses ("jane at example dot com")
// into email syntax. Best effort: anything it cannot improve passes through
// unchanged.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsRune(s, ' ') {
		return s
	}
	parts := strings.Fields(strings.ToLower(s))
	var b strings.Builder
	for _, p := range parts {
		switch p {
		case "at":
			b.WriteByte('@')
		case "dot":
			b.WriteByte('.')
		default:
			b.WriteString(p)
		}
	}
	return b.String()
}
