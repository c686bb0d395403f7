package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ptchurch/site/backend/internal/content"
	"github.com/ptchurch/site/backend/internal/utils/email"
	"github.com/ptchurch/site/shared/domain"
	"github.com/ptchurch/site/shared/logger"
)

// Plain-text mail bodies. Tamil recipients get Tamil boilerplate; catalog
// text is resolved with English fallback like the JSON views.

const whenLayout = "Monday, 2 January 2006, 3:04 PM"

func tokenURL(siteOrigin, path, token string) string {
	return strings.TrimRight(siteOrigin, "/") + path + "?token=" + url.QueryEscape(token)
}

func rsvpConfirmation(r domain.RSVP, ev content.Event, start time.Time, cancelURL string) email.Message {
	title := ev.Title.Get(r.Lang)
	var b strings.Builder
	if r.Lang == domain.LangTamil {
		fmt.Fprintf(&b, "வணக்கம் %s,\n\n", r.Name)
		fmt.Fprintf(&b, "%s நிகழ்வுக்கான உங்கள் பதிவு உறுதி செய்யப்பட்டது (%d பேர்).\n", title, r.Guests)
		fmt.Fprintf(&b, "நேரம்: %s\n", start.Format(whenLayout))
		fmt.Fprintf(&b, "\nரத்து செய்ய: %s\n", cancelURL)
	} else {
		fmt.Fprintf(&b, "Hello %s,\n\n", r.Name)
		fmt.Fprintf(&b, "Your RSVP for %s is confirmed (%d guests).\n", title, r.Guests)
		fmt.Fprintf(&b, "When: %s\n", start.Format(whenLayout))
		fmt.Fprintf(&b, "\nTo cancel: %s\n", cancelURL)
	}
	return email.Message{To: r.Email, Subject: "RSVP: " + title, Body: b.String()}
}

func rsvpReminder(r domain.RSVP, ev content.Event, start time.Time, cancelURL string) email.Message {
	title := ev.Title.Get(r.Lang)
	var b strings.Builder
	if r.Lang == domain.LangTamil {
		fmt.Fprintf(&b, "வணக்கம் %s,\n\n%s விரைவில் தொடங்குகிறது.\n", r.Name, title)
		fmt.Fprintf(&b, "நேரம்: %s\n", start.Format(whenLayout))
		if loc := ev.Location.Get(r.Lang); loc != "" {
			fmt.Fprintf(&b, "இடம்: %s\n", loc)
		}
		fmt.Fprintf(&b, "\nவர இயலாவிட்டால்: %s\n", cancelURL)
	} else {
		fmt.Fprintf(&b, "Hello %s,\n\n%s is coming up.\n", r.Name, title)
		fmt.Fprintf(&b, "When: %s\n", start.Format(whenLayout))
		if loc := ev.Location.Get(r.Lang); loc != "" {
			fmt.Fprintf(&b, "Where: %s\n", loc)
		}
		fmt.Fprintf(&b, "\nCan't make it? %s\n", cancelURL)
	}
	return email.Message{To: r.Email, Subject: "Reminder: " + title, Body: b.String()}
}

func newsletterWelcome(s domain.Subscriber, unsubscribeURL string) email.Message {
	var b strings.Builder
	if s.Lang == domain.LangTamil {
		b.WriteString("எங்கள் செய்திமடலுக்கு பதிவு செய்ததற்கு நன்றி.\n")
		fmt.Fprintf(&b, "\nவிலக: %s\n", unsubscribeURL)
		return email.Message{To: s.Email, Subject: "செய்திமடல் பதிவு", Body: b.String()}
	}
	b.WriteString("Thank you for subscribing to our newsletter.\n")
	fmt.Fprintf(&b, "\nUnsubscribe: %s\n", unsubscribeURL)
	return email.Message{To: s.Email, Subject: "Newsletter subscription", Body: b.String()}
}

// sendBestEffort logs a failed send instead of failing the request.
func sendBestEffort(m Mailer, msg email.Message, component string) bool {
	if m == nil {
		return false
	}
	if err := m.Send(msg); err != nil {
		logger.Log.Warn("failed to send email", "component", component, "subject", msg.Subject, "error", err)
		return false
	}
	return true
}
