package events

import (
	"time"

	"github.com/spec-kit/inquiry-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventInquiryCreated       EventType = "inquiry_created"
	EventInquiryStatusChanged EventType = "inquiry_status_changed"
	EventInquiryResponded     EventType = "inquiry_responded"
	EventInquiryDeleted       EventType = "inquiry_deleted"
)

// AllEventTypes lists every event a subscriber may register for.
var AllEventTypes = []EventType{
	EventInquiryCreated,
	EventInquiryStatusChanged,
	EventInquiryResponded,
	EventInquiryDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	InquiryID string       `json:"inquiry_id"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// InquiryCreatedPayload payload.
type InquiryCreatedPayload struct {
	Type     domain.InquiryType     `json:"type"`
	Priority domain.InquiryPriority `json:"priority"`
	Subject  string                 `json:"subject"`
}

// InquiryStatusChangedPayload payload.
type InquiryStatusChangedPayload struct {
	OldStatus domain.InquiryStatus `json:"old_status"`
	NewStatus domain.InquiryStatus `json:"new_status"`
}

// InquiryRespondedPayload payload.
type InquiryRespondedPayload struct {
	ResponderID   string               `json:"responder_id"`
	NewStatus     domain.InquiryStatus `json:"new_status"`
	FirstResponse bool                 `json:"first_response"`
}

// InquiryDeletedPayload payload.
type InquiryDeletedPayload struct {
	Count int64 `json:"count"`
}
