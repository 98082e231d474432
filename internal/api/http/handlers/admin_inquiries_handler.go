package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inquiry-service/internal/api/dto"
	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/internal/service"
	"github.com/spec-kit/inquiry-service/pkg/util/errorutil"
)

// AdminInquiriesHandler manages admin inquiry endpoints.
type AdminInquiriesHandler struct {
	service *service.InquiryService
}

// NewAdminInquiriesHandler constructs handler.
func NewAdminInquiriesHandler(inquiryService *service.InquiryService) *AdminInquiriesHandler {
	return &AdminInquiriesHandler{service: inquiryService}
}

// ListInquiries GET /admin/inquiries.
func (h *AdminInquiriesHandler) ListInquiries(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	query := parseListQuery(c)
	page, err := h.service.ListForAdmin(c.Context(), actor, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"inquiries":  inquiryResponses(h.service, page.Items),
		"pagination": paginationResponse(page),
	}})
}

// GetInquiry GET /admin/inquiries/:id. Marks the inquiry read.
func (h *AdminInquiriesHandler) GetInquiry(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	inquiry, err := h.service.GetByID(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": inquiryResponse(h.service, inquiry)})
}

// UpdateStatus PUT /admin/inquiries/:id/status.
func (h *AdminInquiriesHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	inquiry, err := h.service.SetStatus(c.Context(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "inquiry status updated successfully",
		"data":    inquiryResponse(h.service, inquiry),
	})
}

// Respond PUT /admin/inquiries/:id/respond.
func (h *AdminInquiriesHandler) Respond(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	inquiry, err := h.service.Respond(c.Context(), actor, c.Params("id"), req.Response, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "response sent successfully",
		"data":    inquiryResponse(h.service, inquiry),
	})
}

// DeleteInquiry DELETE /admin/inquiries/:id.
func (h *AdminInquiriesHandler) DeleteInquiry(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "inquiry deleted successfully"})
}

// BulkUpdate PUT /admin/inquiries/bulk.
func (h *AdminInquiriesHandler) BulkUpdate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.BulkUpdate(c.Context(), actor, req.IDs, service.BulkAction(req.Action), req.Value)
	if err != nil {
		return err
	}
	if service.BulkAction(req.Action) == service.BulkActionDelete {
		return c.JSON(fiber.Map{
			"message": "inquiries deleted successfully",
			"data":    dto.BulkDeleteResponse{DeletedCount: result.Deleted},
		})
	}
	return c.JSON(fiber.Map{
		"message": "inquiries updated successfully",
		"data": dto.BulkUpdateResponse{
			MatchedCount:  result.Matched,
			ModifiedCount: result.Modified,
		},
	})
}

// Stats GET /admin/inquiries/stats.
func (h *AdminInquiriesHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statsResponse(stats)})
}

func statsResponse(stats *domain.InquiryStats) dto.StatsResponse {
	return dto.StatsResponse{
		Overview: dto.StatsOverviewResponse{
			TotalMessages:      stats.Total,
			PendingMessages:    stats.ByStatus[domain.InquiryStatusPending],
			InProgressMessages: stats.ByStatus[domain.InquiryStatusInProgress],
			ResolvedMessages:   stats.ByStatus[domain.InquiryStatusResolved],
			ClosedMessages:     stats.ByStatus[domain.InquiryStatusClosed],
			CourseRequests:     stats.ByType[domain.InquiryTypeCourseRequest],
			TechnicalIssues:    stats.ByType[domain.InquiryTypeTechnical],
			SupportRequests:    stats.ByType[domain.InquiryTypeSupport],
			GeneralMessages:    stats.ByType[domain.InquiryTypeGeneral],
			RecentMessages:     stats.Recent,
			UrgentMessages:     stats.UrgentOutstanding,
		},
		Breakdown: dto.StatsBreakdownResponse{
			ByStatus:   stats.ByStatus,
			ByType:     stats.ByType,
			ByPriority: stats.ByPriority,
		},
		Performance: dto.StatsPerformanceResponse{
			AverageResponseTime: stats.AvgResponseHours,
			TotalResponses:      stats.TotalResponses,
		},
	}
}
