package notify

import (
	"fmt"
	"time"

	"kilnhall/internal/pkg/errs"
)

// Content is the rendered message for one job, shared by all channels.
type Content struct {
	Title string
	Body  string
}

// BuildContent renders the user-facing message for a job kind from its
// payload. The queue engine never interprets the payload itself.
func BuildContent(kind Kind, raw []byte) (Content, error) {
	p, err := ParsePayload(raw)
	if err != nil {
		return Content{}, errs.Mark(err, errs.ErrInvalidPayload)
	}

	switch kind {
	case KindKilnUnloaded:
		return Content{
			Title: "Kiln unloaded",
			Body:  "A firing with your pieces has been unloaded. They will be ready for pickup shortly.",
		}, nil

	case KindReservationStatus:
		body := "Your reservation status changed."
		if p.Status != "" {
			body = fmt.Sprintf("Your reservation is now %s.", p.Status)
		}
		if p.Reason != "" {
			body += " " + p.Reason
		}
		return Content{Title: "Reservation update", Body: body}, nil

	case KindReservationETAShift:
		body := "The estimated window for your reservation has shifted."
		if p.WindowStart != nil && p.WindowEnd != nil {
			body = fmt.Sprintf("Your estimated window is now %s to %s.",
				p.WindowStart.Format(time.RFC1123), p.WindowEnd.Format(time.RFC1123))
		}
		if p.Reason != "" {
			body += " " + p.Reason
		}
		return Content{Title: "Estimate updated", Body: body}, nil

	case KindReservationReadyPickup:
		return Content{
			Title: "Ready for pickup",
			Body:  "Your pieces are out of the kiln and ready for pickup at the studio.",
		}, nil

	case KindReservationDelayFollowUp:
		body := "Your reservation is still delayed. We will keep you posted."
		if p.Reason != "" {
			body = fmt.Sprintf("Your reservation is still delayed: %s", p.Reason)
		}
		return Content{Title: "Still delayed", Body: body}, nil

	case KindReservationPickupReminder:
		title := "Pickup reminder"
		body := "Your fired pieces are waiting for pickup."
		switch {
		case p.StorageStatus == "stored_by_policy":
			title = "Pieces moved to storage"
			body = "Your pieces were moved to studio storage under the uncollected-work policy. Contact the studio to arrange pickup."
		case p.ReminderOrdinal >= 3 || p.StorageStatus == "hold_pending":
			title = "Final pickup reminder"
			body = "Final reminder: uncollected pieces will be moved to studio storage soon."
		case p.ReminderOrdinal == 2:
			body = "Second reminder: your fired pieces are still waiting for pickup."
		}
		return Content{Title: title, Body: body}, nil
	}

	return Content{}, errs.Mark(errs.Newf("unknown job kind %q", kind), errs.ErrInvalidJobKind)
}
