package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inquiry-service/internal/api/dto"
	"github.com/spec-kit/inquiry-service/internal/auth"
	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/internal/service"
	"github.com/spec-kit/inquiry-service/pkg/util/errorutil"
)

// InquiriesHandler manages student inquiry endpoints.
type InquiriesHandler struct {
	service *service.InquiryService
}

// NewInquiriesHandler constructs handler.
func NewInquiriesHandler(inquiryService *service.InquiryService) *InquiriesHandler {
	return &InquiriesHandler{service: inquiryService}
}

// CreateInquiry POST /inquiries.
func (h *InquiriesHandler) CreateInquiry(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateInquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	input := service.CreateInquiryInput{
		Subject:  req.Subject,
		Body:     req.Message,
		Type:     req.Type,
		Priority: req.Priority,
	}
	if req.RequestedCourse != nil {
		input.RequestedCourse = &domain.CourseRequest{
			Title:       req.RequestedCourse.Title,
			Description: req.RequestedCourse.Description,
			Category:    req.RequestedCourse.Category,
			Language:    req.RequestedCourse.Language,
		}
	}

	inquiry, err := h.service.Create(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "support request submitted successfully",
		"data":    inquiryResponse(h.service, inquiry),
	})
}

// ListInquiries GET /inquiries.
func (h *InquiriesHandler) ListInquiries(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	query := parseListQuery(c)
	page, summary, err := h.service.ListForStudent(c.Context(), actor, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"inquiries":  inquiryResponses(h.service, page.Items),
		"pagination": paginationResponse(page),
		"stats":      studentSummaryResponse(summary),
	}})
}

func actorFromContext(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Actor{}, errorutil.NewUnauthorized("authentication required")
	}
	return principal.Actor(), nil
}

func parseListQuery(c *fiber.Ctx) service.ListQuery {
	return service.ListQuery{
		Status:    c.Query("status"),
		Type:      c.Query("type"),
		Priority:  c.Query("priority"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      parseInt(c.Query("page"), 1),
		PageSize:  parseInt(c.Query("limit"), 10),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func inquiryResponse(svc *service.InquiryService, inquiry *domain.Inquiry) dto.InquiryResponse {
	resp := dto.InquiryResponse{
		ID:          inquiry.ID,
		AuthorID:    inquiry.AuthorID,
		Subject:     inquiry.Subject,
		Message:     inquiry.Body,
		Type:        inquiry.Type,
		Status:      inquiry.Status,
		Priority:    inquiry.Priority,
		Response:    inquiry.Response,
		ResponderID: inquiry.ResponderID,
		RespondedAt: inquiry.RespondedAt,
		IsRead:      inquiry.IsRead,
		HasResponse: inquiry.HasResponse(),
		CreatedAt:   inquiry.CreatedAt,
		UpdatedAt:   inquiry.UpdatedAt,
	}
	if inquiry.RequestedCourse != nil {
		resp.RequestedCourse = &dto.CourseRequestPayload{
			Title:       inquiry.RequestedCourse.Title,
			Description: inquiry.RequestedCourse.Description,
			Category:    inquiry.RequestedCourse.Category,
			Language:    inquiry.RequestedCourse.Language,
		}
		resp.CourseDisplay = svc.CourseDisplay(inquiry)
	}
	if latency, ok := inquiry.ResponseTime(); ok {
		days := int(latency.Hours()/24 + 0.5)
		resp.ResponseTimeDays = &days
	}
	return resp
}

func inquiryResponses(svc *service.InquiryService, inquiries []domain.Inquiry) []dto.InquiryResponse {
	items := make([]dto.InquiryResponse, 0, len(inquiries))
	for i := range inquiries {
		items = append(items, inquiryResponse(svc, &inquiries[i]))
	}
	return items
}

func paginationResponse(page *service.InquiryPage) dto.PaginationResponse {
	return dto.PaginationResponse{
		Current:      page.Page,
		Total:        page.TotalPages,
		TotalItems:   page.TotalCount,
		ItemsPerPage: page.PageSize,
		HasNext:      page.HasNext,
		HasPrev:      page.HasPrev,
	}
}

func studentSummaryResponse(summary *domain.AuthorSummary) dto.StudentSummaryResponse {
	return dto.StudentSummaryResponse{
		TotalMessages:       summary.Total,
		PendingCount:        summary.PendingCount,
		InProgressCount:     summary.InProgressCount,
		ResolvedCount:       summary.ResolvedCount,
		CourseRequestCount:  summary.CourseRequestCount,
		TechnicalCount:      summary.TechnicalCount,
		UnreadCount:         summary.UnreadCount,
		AverageResponseTime: summary.AvgResponseDays,
	}
}
