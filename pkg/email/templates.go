package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// AppointmentEmailData carries what the appointment emails mention.
type AppointmentEmailData struct {
	AppName string
	BaseURL string

	To            string
	RecipientName string
	// OtherName is the doctor for patient mail and the patient for doctor mail.
	OtherName string

	Date  time.Time
	Shift string

	NewDate  time.Time
	NewShift string
}

const dateLayout = "Monday, 02 Jan 2006"

func shiftLabel(s string) string {
	switch s {
	case "morning":
		return "morning (from 07:30)"
	case "afternoon":
		return "afternoon (from 13:30)"
	}
	return s
}

func slot(d time.Time, shift string) string {
	return d.Format(dateLayout) + ", " + shiftLabel(shift)
}

func (d AppointmentEmailData) app() string {
	if d.AppName == "" {
		return "MediBook"
	}
	return d.AppName
}

func (d AppointmentEmailData) greeting() string {
	if d.RecipientName == "" {
		return "Hello,"
	}
	return "Hello " + d.RecipientName + ","
}

// compose renders the text body and a minimal HTML twin from the same lines.
func compose(kind, to, subject, greeting string, lines []string, link, signoff string) Message {
	var text strings.Builder
	text.WriteString(greeting + "\n\n")
	for _, l := range lines {
		text.WriteString(l + "\n")
	}
	if link != "" {
		text.WriteString("\n" + link + "\n")
	}
	text.WriteString("\n" + signoff)

	var body strings.Builder
	body.WriteString(`<!DOCTYPE html><html><body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&body, "<p>%s</p>", html.EscapeString(greeting))
	for _, l := range lines {
		fmt.Fprintf(&body, "<p>%s</p>", html.EscapeString(l))
	}
	if link != "" {
		fmt.Fprintf(&body, `<p><a href="%s">%s</a></p>`, html.EscapeString(link), html.EscapeString(link))
	}
	fmt.Fprintf(&body, `<p style="color: #6b7280; font-size: 14px;">%s</p></body></html>`, html.EscapeString(signoff))

	return Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: body.String(),
		Kind:     kind,
	}
}

func link(base, path string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + path
}

// BuildCancellationEmail tells a doctor that a patient canceled.
func BuildCancellationEmail(d AppointmentEmailData) Message {
	return compose("cancellation", d.To,
		fmt.Sprintf("%s: appointment canceled", d.app()),
		d.greeting(),
		[]string{
			fmt.Sprintf("%s canceled the appointment booked for %s.", d.OtherName, slot(d.Date, d.Shift)),
			"The slot is free again.",
		},
		link(d.BaseURL, "/doctor/appointments"),
		"The "+d.app()+" team",
	)
}

// BuildRescheduleEmail tells a patient their appointment was moved.
func BuildRescheduleEmail(d AppointmentEmailData) Message {
	return compose("reschedule", d.To,
		fmt.Sprintf("%s: appointment rescheduled", d.app()),
		d.greeting(),
		[]string{
			fmt.Sprintf("Your appointment with %s has been rescheduled.", d.OtherName),
			"Previous: " + slot(d.Date, d.Shift),
			"New: " + slot(d.NewDate, d.NewShift),
		},
		link(d.BaseURL, "/appointments"),
		"The "+d.app()+" team",
	)
}

// BuildScheduleChangeEmail tells a patient the doctor moved the slot their
// appointment was on.
func BuildScheduleChangeEmail(d AppointmentEmailData) Message {
	return compose("schedule_change", d.To,
		fmt.Sprintf("%s: your doctor changed their schedule", d.app()),
		d.greeting(),
		[]string{
			fmt.Sprintf("%s changed their working schedule, and your appointment moved with it.", d.OtherName),
			"Previous: " + slot(d.Date, d.Shift),
			"New: " + slot(d.NewDate, d.NewShift),
			"If the new time does not suit you, you can cancel up to 24 hours before it.",
		},
		link(d.BaseURL, "/appointments"),
		"The "+d.app()+" team",
	)
}
