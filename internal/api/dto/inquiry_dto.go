package dto

import (
	"time"

	"github.com/spec-kit/inquiry-service/internal/domain"
)

// CourseRequestPayload mirrors the requested-course reference on the wire.
type CourseRequestPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
}

// CreateInquiryRequest payload.
type CreateInquiryRequest struct {
	Subject         string                 `json:"subject"`
	Message         string                 `json:"message"`
	Type            domain.InquiryType     `json:"type"`
	Priority        domain.InquiryPriority `json:"priority"`
	RequestedCourse *CourseRequestPayload  `json:"requestedCourse"`
}

// InquiryResponse is the full wire representation of one inquiry.
type InquiryResponse struct {
	ID               string                 `json:"id"`
	AuthorID         string                 `json:"authorId"`
	Subject          string                 `json:"subject"`
	Message          string                 `json:"message"`
	Type             domain.InquiryType     `json:"type"`
	Status           domain.InquiryStatus   `json:"status"`
	Priority         domain.InquiryPriority `json:"priority"`
	RequestedCourse  *CourseRequestPayload  `json:"requestedCourse,omitempty"`
	CourseDisplay    string                 `json:"courseDisplay,omitempty"`
	Response         *string                `json:"response,omitempty"`
	ResponderID      *string                `json:"responderId,omitempty"`
	RespondedAt      *time.Time             `json:"respondedAt,omitempty"`
	IsRead           bool                   `json:"isRead"`
	HasResponse      bool                   `json:"hasResponse"`
	ResponseTimeDays *int                   `json:"responseTime,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// PaginationResponse describes the page window.
type PaginationResponse struct {
	Current      int   `json:"current"`
	Total        int   `json:"total"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// StudentSummaryResponse is the per-author summary returned with the student
// listing. Average response time is in days, one decimal.
type StudentSummaryResponse struct {
	TotalMessages       int64   `json:"totalMessages"`
	PendingCount        int64   `json:"pendingCount"`
	InProgressCount     int64   `json:"inProgressCount"`
	ResolvedCount       int64   `json:"resolvedCount"`
	CourseRequestCount  int64   `json:"courseRequestCount"`
	TechnicalCount      int64   `json:"technicalCount"`
	UnreadCount         int64   `json:"unreadCount"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.InquiryStatus `json:"status"`
}

// RespondRequest payload. Status is optional; omitted means resolved.
type RespondRequest struct {
	Response string               `json:"response"`
	Status   domain.InquiryStatus `json:"status"`
}

// BulkUpdateRequest payload.
type BulkUpdateRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
	Value  string   `json:"value"`
}

// BulkUpdateResponse reports bulk counters.
type BulkUpdateResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// BulkDeleteResponse reports a bulk deletion.
type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// StatsOverviewResponse top-line counters.
type StatsOverviewResponse struct {
	TotalMessages      int64 `json:"totalMessages"`
	PendingMessages    int64 `json:"pendingMessages"`
	InProgressMessages int64 `json:"inProgressMessages"`
	ResolvedMessages   int64 `json:"resolvedMessages"`
	ClosedMessages     int64 `json:"closedMessages"`
	CourseRequests     int64 `json:"courseRequests"`
	TechnicalIssues    int64 `json:"technicalIssues"`
	SupportRequests    int64 `json:"supportRequests"`
	GeneralMessages    int64 `json:"generalMessages"`
	RecentMessages     int64 `json:"recentMessages"`
	UrgentMessages     int64 `json:"urgentMessages"`
}

// StatsBreakdownResponse per-enum counts.
type StatsBreakdownResponse struct {
	ByStatus   map[domain.InquiryStatus]int64   `json:"byStatus"`
	ByType     map[domain.InquiryType]int64     `json:"byType"`
	ByPriority map[domain.InquiryPriority]int64 `json:"byPriority"`
}

// StatsPerformanceResponse response-latency aggregates. Average response time
// is in hours.
type StatsPerformanceResponse struct {
	AverageResponseTime float64 `json:"averageResponseTime"`
	TotalResponses      int64   `json:"totalResponses"`
}

// StatsResponse is the admin stats envelope.
type StatsResponse struct {
	Overview    StatsOverviewResponse    `json:"overview"`
	Breakdown   StatsBreakdownResponse   `json:"breakdown"`
	Performance StatsPerformanceResponse `json:"performance"`
}
