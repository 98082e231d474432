package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/internal/repository"
	"github.com/spec-kit/inquiry-service/pkg/util/errorutil"
)

var (
	student = domain.Actor{ID: "student-1", Role: domain.RoleStudent}
	admin   = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
)

func newTestService() *InquiryService {
	return NewInquiryService(InquiryDependencies{
		InquiryRepo:    repository.NewMemoryInquiryRepository(),
		CourseResolver: NewDisplayCourseResolver(),
	})
}

func mustCreate(t *testing.T, svc *InquiryService, input CreateInquiryInput) *domain.Inquiry {
	t.Helper()
	inquiry, err := svc.Create(context.Background(), student, input)
	require.NoError(t, err)
	return inquiry
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var derr *errorutil.DomainError
	require.True(t, errors.As(err, &derr), "expected DomainError, got %v", err)
	assert.Equal(t, code, derr.Code)
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	inquiry := mustCreate(t, svc, CreateInquiryInput{Subject: "  hello  ", Body: " need help "})
	assert.Equal(t, "hello", inquiry.Subject)
	assert.Equal(t, "need help", inquiry.Body)
	assert.Equal(t, domain.InquiryTypeGeneral, inquiry.Type)
	assert.Equal(t, domain.InquiryStatusPending, inquiry.Status)
	assert.Equal(t, domain.InquiryPriorityMedium, inquiry.Priority)
	assert.False(t, inquiry.IsRead)
	assert.NotEmpty(t, inquiry.ID)

	_, err := svc.Create(ctx, student, CreateInquiryInput{Subject: "   ", Body: "b"})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, student, CreateInquiryInput{Subject: strings.Repeat("x", 201), Body: "b"})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, student, CreateInquiryInput{Subject: "s", Body: strings.Repeat("x", 2001)})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, student, CreateInquiryInput{Subject: "s", Body: "b", Type: "billing"})
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, admin, CreateInquiryInput{Subject: "s", Body: "b"})
	assertCode(t, err, "FORBIDDEN")
}

func TestCreateDropsCourseForNonCourseTypes(t *testing.T) {
	svc := newTestService()
	course := &domain.CourseRequest{Title: "Go Basics", Category: "programming"}

	withCourse := mustCreate(t, svc, CreateInquiryInput{
		Subject: "s", Body: "b", Type: domain.InquiryTypeCourseRequest, RequestedCourse: course,
	})
	require.NotNil(t, withCourse.RequestedCourse)
	assert.Equal(t, "Go Basics (programming)", svc.CourseDisplay(withCourse))

	plain := mustCreate(t, svc, CreateInquiryInput{
		Subject: "s", Body: "b", Type: domain.InquiryTypeTechnical, RequestedCourse: course,
	})
	assert.Nil(t, plain.RequestedCourse)
	assert.Empty(t, svc.CourseDisplay(plain))
}

func TestGetByIDMarksRead(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	got, err := svc.GetByID(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	again, err := svc.GetByID(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)

	_, err = svc.GetByID(ctx, student, created.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = svc.GetByID(ctx, admin, "missing")
	assertCode(t, err, "NOT_FOUND")
}

func TestRespondStampsFirstResponseOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	first, err := svc.Respond(ctx, admin, created.ID, "clear your cache", "")
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusResolved, first.Status)
	require.NotNil(t, first.RespondedAt)
	require.NotNil(t, first.ResponderID)
	assert.Equal(t, admin.ID, *first.ResponderID)
	assert.True(t, first.IsRead)
	firstStamp := *first.RespondedAt

	second, err := svc.Respond(ctx, admin, created.ID, "try again after the fix", domain.InquiryStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusClosed, second.Status)
	assert.Equal(t, "try again after the fix", *second.Response)
	require.NotNil(t, second.RespondedAt)
	assert.True(t, second.RespondedAt.Equal(firstStamp), "second response keeps the first stamp")

	_, err = svc.Respond(ctx, admin, created.ID, "   ", "")
	assertCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Respond(ctx, admin, created.ID, "ok", "archived")
	assertCode(t, err, "INVALID_STATUS")

	_, err = svc.Respond(ctx, student, created.ID, "ok", "")
	assertCode(t, err, "FORBIDDEN")
}

func TestSetStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	// any enum member is reachable from any other
	updated, err := svc.SetStatus(ctx, admin, created.ID, domain.InquiryStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusClosed, updated.Status)
	assert.True(t, updated.IsRead)

	reopened, err := svc.SetStatus(ctx, admin, created.ID, domain.InquiryStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusPending, reopened.Status)

	_, err = svc.SetStatus(ctx, admin, created.ID, "archived")
	assertCode(t, err, "INVALID_STATUS")

	_, err = svc.SetStatus(ctx, admin, "missing", domain.InquiryStatusClosed)
	assertCode(t, err, "NOT_FOUND")
}

func TestBulkUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	one := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})
	two := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	result, err := svc.BulkUpdate(ctx, admin, []string{one.ID, two.ID}, BulkActionStatus, "in_progress")
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Matched)
	assert.EqualValues(t, 2, result.Modified)

	_, err = svc.BulkUpdate(ctx, admin, []string{one.ID}, BulkActionStatus, "archived")
	assertCode(t, err, "INVALID_VALUE")
	unchanged, err := svc.GetByID(ctx, admin, one.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusInProgress, unchanged.Status, "invalid value mutates nothing")

	_, err = svc.BulkUpdate(ctx, admin, []string{one.ID}, "rename", "x")
	assertCode(t, err, "INVALID_VALUE")

	_, err = svc.BulkUpdate(ctx, admin, nil, BulkActionStatus, "pending")
	assertCode(t, err, "VALIDATION_FAILED")

	result, err = svc.BulkUpdate(ctx, admin, []string{one.ID, "missing"}, BulkActionDelete, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Deleted)
	_, err = svc.GetByID(ctx, admin, one.ID)
	assertCode(t, err, "NOT_FOUND")
}

func TestListForStudentScopesAndSummarizes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	mine := mustCreate(t, svc, CreateInquiryInput{Subject: "login broken", Body: "cannot sign in"})
	mustCreate(t, svc, CreateInquiryInput{Subject: "other topic", Body: "something else"})

	other := domain.Actor{ID: "student-2", Role: domain.RoleStudent}
	_, err := svc.Create(ctx, other, CreateInquiryInput{Subject: "not mine", Body: "b"})
	require.NoError(t, err)

	page, summary, err := svc.ListForStudent(ctx, student, ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
	assert.EqualValues(t, 2, summary.Total)
	assert.EqualValues(t, 2, summary.PendingCount)
	assert.EqualValues(t, 2, summary.UnreadCount)

	// student search reaches the admin response text
	_, err = svc.Respond(ctx, admin, mine.ID, "reset via the password page", "")
	require.NoError(t, err)
	page, _, err = svc.ListForStudent(ctx, student, ListQuery{Search: "password page"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	// unrecognized filter values are ignored, not rejected
	page, _, err = svc.ListForStudent(ctx, student, ListQuery{Status: "archived"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	_, _, err = svc.ListForStudent(ctx, admin, ListQuery{})
	assertCode(t, err, "FORBIDDEN")
}

func TestListForAdminSearchSkipsResponses(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, CreateInquiryInput{Subject: "login broken", Body: "cannot sign in"})
	_, err := svc.Respond(ctx, admin, created.ID, "reset via the password page", "")
	require.NoError(t, err)

	page, err := svc.ListForAdmin(ctx, admin, ListQuery{Search: "password page"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.TotalCount)

	page, err = svc.ListForAdmin(ctx, admin, ListQuery{Search: "login"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	_, err = svc.ListForAdmin(ctx, student, ListQuery{})
	assertCode(t, err, "FORBIDDEN")
}

func TestListPageSizeClamp(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	page, err := svc.ListForAdmin(ctx, admin, ListQuery{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)

	page, err = svc.ListForAdmin(ctx, admin, ListQuery{Page: -3, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
}

func TestStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b", Priority: domain.InquiryPriorityUrgent})
	mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b", Type: domain.InquiryTypeCourseRequest})

	_, err := svc.Respond(ctx, admin, created.ID, "done", "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[domain.InquiryStatusResolved])
	assert.EqualValues(t, 1, stats.ByType[domain.InquiryTypeCourseRequest])
	assert.EqualValues(t, 2, stats.Recent)
	assert.EqualValues(t, 0, stats.UrgentOutstanding, "responding resolved the urgent inquiry")
	assert.EqualValues(t, 1, stats.TotalResponses)

	_, err = svc.Stats(ctx, student)
	assertCode(t, err, "FORBIDDEN")
}

func TestDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created := mustCreate(t, svc, CreateInquiryInput{Subject: "s", Body: "b"})

	require.NoError(t, svc.Delete(ctx, admin, created.ID))
	err := svc.Delete(ctx, admin, created.ID)
	assertCode(t, err, "NOT_FOUND")

	err = svc.Delete(ctx, student, created.ID)
	assertCode(t, err, "FORBIDDEN")
}
