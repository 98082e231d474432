package domain

import "time"

// InquiryType classifies what a student is asking for.
type InquiryType string

const (
	InquiryTypeCourseRequest InquiryType = "course_request"
	InquiryTypeTechnical     InquiryType = "technical"
	InquiryTypeSupport       InquiryType = "support"
	InquiryTypeGeneral       InquiryType = "general"
)

// InquiryStatus enumerates lifecycle states for inquiries.
type InquiryStatus string

const (
	InquiryStatusPending    InquiryStatus = "pending"
	InquiryStatusInProgress InquiryStatus = "in_progress"
	InquiryStatusResolved   InquiryStatus = "resolved"
	InquiryStatusClosed     InquiryStatus = "closed"
)

// InquiryPriority enumerates urgency levels.
type InquiryPriority string

const (
	InquiryPriorityLow    InquiryPriority = "low"
	InquiryPriorityMedium InquiryPriority = "medium"
	InquiryPriorityHigh   InquiryPriority = "high"
	InquiryPriorityUrgent InquiryPriority = "urgent"
)

// ValidType reports whether the value is a member of the type enum.
func ValidType(t InquiryType) bool {
	switch t {
	case InquiryTypeCourseRequest, InquiryTypeTechnical, InquiryTypeSupport, InquiryTypeGeneral:
		return true
	}
	return false
}

// ValidStatus reports membership in the status enum. Transition legality is
// deliberately not checked: admins may move an inquiry to any status to
// correct mistakes.
func ValidStatus(s InquiryStatus) bool {
	switch s {
	case InquiryStatusPending, InquiryStatusInProgress, InquiryStatusResolved, InquiryStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports membership in the priority enum.
func ValidPriority(p InquiryPriority) bool {
	switch p {
	case InquiryPriorityLow, InquiryPriorityMedium, InquiryPriorityHigh, InquiryPriorityUrgent:
		return true
	}
	return false
}

// CourseRequest carries the course details a student asks for. Display only;
// it is never validated against the course catalog.
type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Inquiry is the aggregate for student support requests. One message, one
// optional admin response; there is no threading.
type Inquiry struct {
	ID              string
	AuthorID        string
	Subject         string
	Body            string
	Type            InquiryType
	Status          InquiryStatus
	Priority        InquiryPriority
	RequestedCourse *CourseRequest
	Response        *string
	ResponderID     *string
	RespondedAt     *time.Time
	IsRead          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasResponse reports whether an admin has replied.
func (i *Inquiry) HasResponse() bool {
	return i.Response != nil && *i.Response != ""
}

// ResponseTime returns the latency between creation and the first response.
// Zero and false when no response has been recorded.
func (i *Inquiry) ResponseTime() (time.Duration, bool) {
	if i.RespondedAt == nil {
		return 0, false
	}
	return i.RespondedAt.Sub(i.CreatedAt), true
}
