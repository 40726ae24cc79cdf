package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-assistant/internal/models"
	"github.com/BruksfildServices01/barber-assistant/internal/validators"
)

const (
	humanDate  = "Monday, January 2, 2006"
	promptDate = "01/02/2006"
)

// Apology is the reply for any failure the customer cannot fix.
const Apology = "I'm sorry, I encountered an error while processing your request. Please try again later."

func formatDate(date string) string {
	t, err := time.Parse(validators.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(humanDate)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func specialties(b models.Barber) string {
	if len(b.Specialties) == 0 {
		return "All services"
	}
	return strings.Join(b.Specialties, ", ")
}

// parseIndex reads a 1-based list index.
func parseIndex(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return n, true
}

func serviceList(services []models.Service, footer string) string {
	var sb strings.Builder
	sb.WriteString("Here are our services:\n\n")
	for i, s := range services {
		fmt.Fprintf(&sb, "%d. %s - %s (%d min)\n", i+1, s.Name, formatPrice(s.Price), s.DurationMin)
	}
	if footer != "" {
		sb.WriteString("\n" + footer)
	}
	return sb.String()
}

func slotList(date string, slots []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Available times on %s:\n\n", formatDate(date))
	for i, s := range slots {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	sb.WriteString("\nReply with the number of your preferred time.")
	return sb.String()
}

func barberList(barbers []models.Barber, header, footer string) string {
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for i, b := range barbers {
		fmt.Fprintf(&sb, "%d. %s\n   Specialties: %s\n", i+1, b.Name, specialties(b))
	}
	if footer != "" {
		sb.WriteString("\n" + footer)
	}
	return sb.String()
}

func snapshotList(header string, aps []Snapshot) string {
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for i, ap := range aps {
		fmt.Fprintf(&sb, "%d. %s at %s\n   Service: %s\n   Barber: %s\n", i+1, formatDate(ap.Date), ap.Time, ap.ServiceName, ap.BarberName)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func rangeHint(what string, n int) string {
	return fmt.Sprintf("Invalid %s number. Please select a number between 1 and %d.", what, n)
}
