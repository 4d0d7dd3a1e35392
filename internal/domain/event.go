package domain

import "time"

type EventKind string

const (
	EventOrderPlaced      EventKind = "order.placed"
	EventContactSubmitted EventKind = "contact.submitted"
)

// ClientInfo is what we know about the browser that submitted a form.
type ClientInfo struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
}

// Event is one accepted business record on its way to the outbound sinks.
// Exactly one of Order or Contact is set, according to Kind.
type Event struct {
	Kind    EventKind
	Order   *Order
	Contact *Contact
	Client  ClientInfo
}

func NewOrderEvent(order *Order, client ClientInfo) Event {
	return Event{Kind: EventOrderPlaced, Order: order, Client: client}
}

func NewContactEvent(contact *Contact, client ClientInfo) Event {
	return Event{Kind: EventContactSubmitted, Contact: contact, Client: client}
}

// RecordID is the id of the underlying order or contact.
func (e Event) RecordID() string {
	switch {
	case e.Order != nil:
		return e.Order.ID
	case e.Contact != nil:
		return e.Contact.ID
	}
	return ""
}

// RecordTime returns the client supplied RFC 3339 timestamp, or now when it
// is missing or malformed.
func RecordTime(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return now
	}
	return t
}
