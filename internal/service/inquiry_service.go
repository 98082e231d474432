package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/internal/events"
	"github.com/spec-kit/inquiry-service/internal/repository"
	"github.com/spec-kit/inquiry-service/pkg/util/errorutil"
)

const (
	maxSubjectLen  = 200
	maxBodyLen     = 2000
	maxResponseLen = 2000

	defaultPageSize = 10
	maxPageSize     = 50
)

// sortFields is the allow-list of sortable fields exposed to callers.
var sortFields = map[string]repository.SortField{
	"createdAt":   repository.SortByCreatedAt,
	"subject":     repository.SortBySubject,
	"status":      repository.SortByStatus,
	"priority":    repository.SortByPriority,
	"respondedAt": repository.SortByRespondedAt,
}

// InquiryService coordinates the inquiry lifecycle.
type InquiryService struct {
	inquiries  repository.InquiryRepository
	courses    CourseResolver
	dispatcher events.Dispatcher
}

// InquiryDependencies bundles collaborators for the inquiry service.
type InquiryDependencies struct {
	InquiryRepo    repository.InquiryRepository
	CourseResolver CourseResolver
	Dispatcher     events.Dispatcher
}

// NewInquiryService constructs the service.
func NewInquiryService(deps InquiryDependencies) *InquiryService {
	return &InquiryService{
		inquiries:  deps.InquiryRepo,
		courses:    deps.CourseResolver,
		dispatcher: deps.Dispatcher,
	}
}

// CreateInquiryInput describes inquiry creation payload.
type CreateInquiryInput struct {
	Subject         string
	Body            string
	Type            domain.InquiryType
	Priority        domain.InquiryPriority
	RequestedCourse *domain.CourseRequest
}

// ListQuery carries the filter vocabulary shared by both audiences. Values
// outside the enumerated sets are ignored rather than rejected so the UI
// stays forgiving.
type ListQuery struct {
	Status    string
	Type      string
	Priority  string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// InquiryPage is the paginated listing envelope.
type InquiryPage struct {
	Items      []domain.Inquiry
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int64
	HasNext    bool
	HasPrev    bool
}

// BulkAction enumerates bulk operations.
type BulkAction string

const (
	BulkActionStatus   BulkAction = "status"
	BulkActionPriority BulkAction = "priority"
	BulkActionDelete   BulkAction = "delete"
)

// BulkResult reports bulk operation counters.
type BulkResult struct {
	Matched  int64
	Modified int64
	Deleted  int64
}

// Create files a new inquiry for a student.
func (s *InquiryService) Create(ctx context.Context, actor domain.Actor, input CreateInquiryInput) (*domain.Inquiry, error) {
	if actor.Role != domain.RoleStudent {
		return nil, errorutil.NewForbidden("only students can file inquiries")
	}

	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)
	if subject == "" {
		return nil, errorutil.NewValidationError("subject is required", nil)
	}
	if len(subject) > maxSubjectLen {
		return nil, errorutil.NewValidationError("subject too long", map[string]any{"max": maxSubjectLen})
	}
	if body == "" {
		return nil, errorutil.NewValidationError("message is required", nil)
	}
	if len(body) > maxBodyLen {
		return nil, errorutil.NewValidationError("message too long", map[string]any{"max": maxBodyLen})
	}

	inquiryType := input.Type
	if inquiryType == "" {
		inquiryType = domain.InquiryTypeGeneral
	}
	if !domain.ValidType(inquiryType) {
		return nil, errorutil.NewValidationError("unrecognized inquiry type", map[string]any{"type": inquiryType})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.InquiryPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, errorutil.NewValidationError("unrecognized priority", map[string]any{"priority": priority})
	}

	inquiry := &domain.Inquiry{
		AuthorID: actor.ID,
		Subject:  subject,
		Body:     body,
		Type:     inquiryType,
		Status:   domain.InquiryStatusPending,
		Priority: priority,
	}
	// course details ride along only on course requests; other types drop them
	if inquiryType == domain.InquiryTypeCourseRequest {
		inquiry.RequestedCourse = input.RequestedCourse
	}

	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, errorutil.NewStoreError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventInquiryCreated,
		InquiryID: inquiry.ID,
		Actor:     actor,
		Payload: events.InquiryCreatedPayload{
			Type:     inquiry.Type,
			Priority: inquiry.Priority,
			Subject:  inquiry.Subject,
		},
	})
	return inquiry, nil
}

// GetByID fetches a single inquiry for an admin, flipping isRead on first view.
func (s *InquiryService) GetByID(ctx context.Context, actor domain.Actor, id string) (*domain.Inquiry, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError("inquiry", id, err)
	}
	if !inquiry.IsRead {
		inquiry.IsRead = true
		if err := s.inquiries.Update(ctx, inquiry); err != nil {
			return nil, mapRepoError("inquiry", id, err)
		}
	}
	return inquiry, nil
}

// ListForStudent returns the author-scoped page plus a per-author summary.
// The student's search also matches the admin response text.
func (s *InquiryService) ListForStudent(ctx context.Context, actor domain.Actor, query ListQuery) (*InquiryPage, *domain.AuthorSummary, error) {
	if actor.Role != domain.RoleStudent {
		return nil, nil, errorutil.NewForbidden("student access required")
	}
	authorID := actor.ID
	filter, page, pageSize := buildFilter(query, true)
	filter.AuthorID = &authorID

	result, err := s.listPage(ctx, filter, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.inquiries.AuthorSummary(ctx, authorID)
	if err != nil {
		return nil, nil, errorutil.NewStoreError(err)
	}
	summary.AvgResponseDays = math.Round(summary.AvgResponseDays*10) / 10
	return result, summary, nil
}

// ListForAdmin returns the unscoped page. Admin search covers subject and
// body only.
func (s *InquiryService) ListForAdmin(ctx context.Context, actor domain.Actor, query ListQuery) (*InquiryPage, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	filter, page, pageSize := buildFilter(query, false)
	return s.listPage(ctx, filter, page, pageSize)
}

// Respond records an admin's reply. The first response stamps respondedAt;
// later edits keep the original stamp. Status defaults to resolved.
func (s *InquiryService) Respond(ctx context.Context, actor domain.Actor, id, responseText string, targetStatus domain.InquiryStatus) (*domain.Inquiry, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	response := strings.TrimSpace(responseText)
	if response == "" {
		return nil, errorutil.NewValidationError("response is required", nil)
	}
	if len(response) > maxResponseLen {
		return nil, errorutil.NewValidationError("response too long", map[string]any{"max": maxResponseLen})
	}
	if targetStatus == "" {
		targetStatus = domain.InquiryStatusResolved
	}
	if !domain.ValidStatus(targetStatus) {
		return nil, errorutil.NewInvalidStatus(string(targetStatus))
	}

	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError("inquiry", id, err)
	}

	firstResponse := inquiry.RespondedAt == nil
	inquiry.Response = &response
	responderID := actor.ID
	inquiry.ResponderID = &responderID
	if firstResponse {
		now := time.Now()
		inquiry.RespondedAt = &now
	}
	inquiry.Status = targetStatus
	inquiry.IsRead = true

	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return nil, mapRepoError("inquiry", id, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventInquiryResponded,
		InquiryID: inquiry.ID,
		Actor:     actor,
		Payload: events.InquiryRespondedPayload{
			ResponderID:   actor.ID,
			NewStatus:     inquiry.Status,
			FirstResponse: firstResponse,
		},
	})
	return inquiry, nil
}

// SetStatus moves an inquiry to any member of the status enum. Transition
// edges are intentionally not restricted.
func (s *InquiryService) SetStatus(ctx context.Context, actor domain.Actor, id string, status domain.InquiryStatus) (*domain.Inquiry, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	if !domain.ValidStatus(status) {
		return nil, errorutil.NewInvalidStatus(string(status))
	}

	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError("inquiry", id, err)
	}

	oldStatus := inquiry.Status
	inquiry.Status = status
	inquiry.IsRead = true
	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return nil, mapRepoError("inquiry", id, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventInquiryStatusChanged,
		InquiryID: inquiry.ID,
		Actor:     actor,
		Payload: events.InquiryStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return inquiry, nil
}

// Delete removes an inquiry permanently.
func (s *InquiryService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return errorutil.NewForbidden("admin access required")
	}
	if err := s.inquiries.Delete(ctx, id); err != nil {
		return mapRepoError("inquiry", id, err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventInquiryDeleted,
		InquiryID: id,
		Actor:     actor,
		Payload:   events.InquiryDeletedPayload{Count: 1},
	})
	return nil
}

// BulkUpdate applies one status/priority change or deletion across a set of
// ids. The value is checked against the enum up front; an invalid value
// mutates nothing. Per-id application is best effort, not transactional.
func (s *InquiryService) BulkUpdate(ctx context.Context, actor domain.Actor, ids []string, action BulkAction, value string) (*BulkResult, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	if len(ids) == 0 {
		return nil, errorutil.NewValidationError("no inquiry ids provided", nil)
	}

	switch action {
	case BulkActionStatus:
		status := domain.InquiryStatus(value)
		if !domain.ValidStatus(status) {
			return nil, errorutil.NewInvalidValue("invalid status value", map[string]any{"value": value})
		}
		outcome, err := s.inquiries.UpdateMany(ctx, ids, repository.InquiryBulkPatch{Status: &status})
		if err != nil {
			return nil, errorutil.NewStoreError(err)
		}
		return &BulkResult{Matched: outcome.Matched, Modified: outcome.Modified}, nil

	case BulkActionPriority:
		priority := domain.InquiryPriority(value)
		if !domain.ValidPriority(priority) {
			return nil, errorutil.NewInvalidValue("invalid priority value", map[string]any{"value": value})
		}
		outcome, err := s.inquiries.UpdateMany(ctx, ids, repository.InquiryBulkPatch{Priority: &priority})
		if err != nil {
			return nil, errorutil.NewStoreError(err)
		}
		return &BulkResult{Matched: outcome.Matched, Modified: outcome.Modified}, nil

	case BulkActionDelete:
		deleted, err := s.inquiries.DeleteMany(ctx, ids)
		if err != nil {
			return nil, errorutil.NewStoreError(err)
		}
		if deleted > 0 {
			s.publishEvent(ctx, events.Event{
				Type:  events.EventInquiryDeleted,
				Actor: actor,
				Payload: events.InquiryDeletedPayload{
					Count: deleted,
				},
			})
		}
		return &BulkResult{Deleted: deleted}, nil

	default:
		return nil, errorutil.NewInvalidValue("invalid action specified", map[string]any{"action": action})
	}
}

// Stats computes the global aggregate over the full inquiry set. Always a
// fresh scan; nothing is cached.
func (s *InquiryService) Stats(ctx context.Context, actor domain.Actor) (*domain.InquiryStats, error) {
	if !actor.IsAdmin() {
		return nil, errorutil.NewForbidden("admin access required")
	}
	stats, err := s.inquiries.Stats(ctx)
	if err != nil {
		return nil, errorutil.NewStoreError(err)
	}
	return stats, nil
}

// CourseDisplay formats an inquiry's requested course for display.
func (s *InquiryService) CourseDisplay(inquiry *domain.Inquiry) string {
	if s.courses == nil || inquiry.RequestedCourse == nil {
		return ""
	}
	return s.courses.FormatCourseRequest(inquiry.RequestedCourse)
}

func (s *InquiryService) listPage(ctx context.Context, filter repository.InquiryFilter, page, pageSize int) (*InquiryPage, error) {
	items, total, err := s.inquiries.List(ctx, filter)
	if err != nil {
		return nil, errorutil.NewStoreError(err)
	}
	if items == nil {
		items = []domain.Inquiry{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &InquiryPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

func buildFilter(query ListQuery, searchResponse bool) (repository.InquiryFilter, int, int) {
	filter := repository.InquiryFilter{SearchResponse: searchResponse}

	if status := domain.InquiryStatus(query.Status); query.Status != "" && domain.ValidStatus(status) {
		filter.Status = &status
	}
	if inquiryType := domain.InquiryType(query.Type); query.Type != "" && domain.ValidType(inquiryType) {
		filter.Type = &inquiryType
	}
	if priority := domain.InquiryPriority(query.Priority); query.Priority != "" && domain.ValidPriority(priority) {
		filter.Priority = &priority
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.Search = &search
	}

	if field, ok := sortFields[query.SortBy]; ok {
		filter.SortBy = field
	} else {
		filter.SortBy = repository.SortByCreatedAt
	}
	filter.SortDesc = query.SortOrder != "asc"

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter, page, pageSize
}

func (s *InquiryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapRepoError(resource, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound(resource, map[string]any{"id": id})
	}
	return errorutil.NewStoreError(err)
}
