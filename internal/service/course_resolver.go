package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/inquiry-service/internal/domain"
)

// CourseResolver formats requested-course references for display. The inquiry
// subsystem never validates them against the real catalog.
type CourseResolver interface {
	FormatCourseRequest(req *domain.CourseRequest) string
}

type displayCourseResolver struct{}

// NewDisplayCourseResolver returns the display-only resolver.
func NewDisplayCourseResolver() CourseResolver {
	return displayCourseResolver{}
}

func (displayCourseResolver) FormatCourseRequest(req *domain.CourseRequest) string {
	if req == nil {
		return ""
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "untitled course"
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		return fmt.Sprintf("%s (%s)", title, category)
	}
	return title
}
