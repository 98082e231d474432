package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnumMembership(t *testing.T) {
	for _, status := range []InquiryStatus{InquiryStatusPending, InquiryStatusInProgress, InquiryStatusResolved, InquiryStatusClosed} {
		assert.True(t, ValidStatus(status), string(status))
	}
	assert.False(t, ValidStatus("reopened"))
	assert.False(t, ValidStatus(""))

	for _, typ := range []InquiryType{InquiryTypeCourseRequest, InquiryTypeTechnical, InquiryTypeSupport, InquiryTypeGeneral} {
		assert.True(t, ValidType(typ), string(typ))
	}
	assert.False(t, ValidType("billing"))

	for _, priority := range []InquiryPriority{InquiryPriorityLow, InquiryPriorityMedium, InquiryPriorityHigh, InquiryPriorityUrgent} {
		assert.True(t, ValidPriority(priority), string(priority))
	}
	assert.False(t, ValidPriority("critical"))
}

func TestResponseTime(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	responded := created.Add(36 * time.Hour)

	inquiry := Inquiry{CreatedAt: created}
	_, ok := inquiry.ResponseTime()
	assert.False(t, ok)
	assert.False(t, inquiry.HasResponse())

	text := "use a supported browser"
	inquiry.Response = &text
	inquiry.RespondedAt = &responded
	latency, ok := inquiry.ResponseTime()
	assert.True(t, ok)
	assert.Equal(t, 36*time.Hour, latency)
	assert.True(t, inquiry.HasResponse())
}
