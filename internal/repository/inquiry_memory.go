package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/inquiry-service/internal/domain"
)

// memoryInquiryRepository keeps inquiries in process memory. Used when no
// POSTGRES_DSN is configured and by unit tests. Semantics mirror the Postgres
// implementation; a single mutex gives the same atomic per-record writes.
type memoryInquiryRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Inquiry
	now   func() time.Time
}

// NewMemoryInquiryRepository returns an in-memory InquiryRepository.
func NewMemoryInquiryRepository() InquiryRepository {
	return &memoryInquiryRepository{
		items: make(map[string]*domain.Inquiry),
		now:   time.Now,
	}
}

func (r *memoryInquiryRepository) Create(_ context.Context, inquiry *domain.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	now := r.now()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now
	stored := *inquiry
	r.items[inquiry.ID] = &stored
	return nil
}

func (r *memoryInquiryRepository) GetByID(_ context.Context, id string) (*domain.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *memoryInquiryRepository) Update(_ context.Context, inquiry *domain.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[inquiry.ID]
	if !ok {
		return ErrNotFound
	}
	inquiry.CreatedAt = stored.CreatedAt
	inquiry.UpdatedAt = r.now()
	copied := *inquiry
	r.items[inquiry.ID] = &copied
	return nil
}

func (r *memoryInquiryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryInquiryRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryInquiryRepository) List(_ context.Context, filter InquiryFilter) ([]domain.Inquiry, int64, error) {
	r.mu.RLock()
	matched := make([]domain.Inquiry, 0, len(r.items))
	for _, stored := range r.items {
		if matchesFilter(stored, filter) {
			matched = append(matched, *stored)
		}
	}
	r.mu.RUnlock()

	sortInquiries(matched, filter.SortBy, filter.SortDesc)

	total := int64(len(matched))
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if offset >= len(matched) {
		return []domain.Inquiry{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryInquiryRepository) UpdateMany(_ context.Context, ids []string, patch InquiryBulkPatch) (BulkOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var outcome BulkOutcome
	for _, id := range ids {
		stored, ok := r.items[id]
		if !ok {
			continue
		}
		outcome.Matched++
		changed := false
		if patch.Status != nil && stored.Status != *patch.Status {
			stored.Status = *patch.Status
			changed = true
		}
		if patch.Status != nil && !stored.IsRead {
			stored.IsRead = true
			changed = true
		}
		if patch.Priority != nil && stored.Priority != *patch.Priority {
			stored.Priority = *patch.Priority
			changed = true
		}
		if changed {
			stored.UpdatedAt = r.now()
			outcome.Modified++
		}
	}
	return outcome, nil
}

func (r *memoryInquiryRepository) Stats(_ context.Context) (*domain.InquiryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.InquiryStats{
		ByStatus:   make(map[domain.InquiryStatus]int64),
		ByType:     make(map[domain.InquiryType]int64),
		ByPriority: make(map[domain.InquiryPriority]int64),
	}
	cutoff := r.now().AddDate(0, 0, -7)
	var hoursSum float64

	for _, inquiry := range r.items {
		stats.Total++
		stats.ByStatus[inquiry.Status]++
		stats.ByType[inquiry.Type]++
		stats.ByPriority[inquiry.Priority]++
		if !inquiry.CreatedAt.Before(cutoff) {
			stats.Recent++
		}
		if inquiry.Priority == domain.InquiryPriorityUrgent &&
			(inquiry.Status == domain.InquiryStatusPending || inquiry.Status == domain.InquiryStatusInProgress) {
			stats.UrgentOutstanding++
		}
		if inquiry.Status == domain.InquiryStatusResolved && inquiry.RespondedAt != nil {
			hoursSum += inquiry.RespondedAt.Sub(inquiry.CreatedAt).Hours()
			stats.TotalResponses++
		}
	}
	if stats.TotalResponses > 0 {
		stats.AvgResponseHours = hoursSum / float64(stats.TotalResponses)
	}
	return stats, nil
}

func (r *memoryInquiryRepository) AuthorSummary(_ context.Context, authorID string) (*domain.AuthorSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summary domain.AuthorSummary
	var daysSum float64
	var responded int64

	for _, inquiry := range r.items {
		if inquiry.AuthorID != authorID {
			continue
		}
		summary.Total++
		switch inquiry.Status {
		case domain.InquiryStatusPending:
			summary.PendingCount++
		case domain.InquiryStatusInProgress:
			summary.InProgressCount++
		case domain.InquiryStatusResolved:
			summary.ResolvedCount++
		}
		switch inquiry.Type {
		case domain.InquiryTypeCourseRequest:
			summary.CourseRequestCount++
		case domain.InquiryTypeTechnical:
			summary.TechnicalCount++
		}
		if !inquiry.IsRead {
			summary.UnreadCount++
		}
		if inquiry.RespondedAt != nil {
			daysSum += inquiry.RespondedAt.Sub(inquiry.CreatedAt).Hours() / 24
			responded++
		}
	}
	if responded > 0 {
		summary.AvgResponseDays = daysSum / float64(responded)
	}
	return &summary, nil
}

func matchesFilter(inquiry *domain.Inquiry, filter InquiryFilter) bool {
	if filter.AuthorID != nil && inquiry.AuthorID != *filter.AuthorID {
		return false
	}
	if filter.Status != nil && inquiry.Status != *filter.Status {
		return false
	}
	if filter.Type != nil && inquiry.Type != *filter.Type {
		return false
	}
	if filter.Priority != nil && inquiry.Priority != *filter.Priority {
		return false
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		needle := strings.ToLower(strings.TrimSpace(*filter.Search))
		haystacks := []string{inquiry.Subject, inquiry.Body}
		if filter.SearchResponse && inquiry.Response != nil {
			haystacks = append(haystacks, *inquiry.Response)
		}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortInquiries(items []domain.Inquiry, field SortField, desc bool) {
	if field == "" {
		field = SortByCreatedAt
	}
	sort.SliceStable(items, func(i, j int) bool {
		less := inquiryLess(&items[i], &items[j], field)
		if desc {
			return inquiryLess(&items[j], &items[i], field)
		}
		return less
	})
}

func inquiryLess(a, b *domain.Inquiry, field SortField) bool {
	switch field {
	case SortBySubject:
		return strings.ToLower(a.Subject) < strings.ToLower(b.Subject)
	case SortByStatus:
		return a.Status < b.Status
	case SortByPriority:
		return a.Priority < b.Priority
	case SortByRespondedAt:
		// nil responded_at sorts first, mirroring SQL NULLS FIRST on ASC
		switch {
		case a.RespondedAt == nil && b.RespondedAt == nil:
			return a.ID < b.ID
		case a.RespondedAt == nil:
			return true
		case b.RespondedAt == nil:
			return false
		default:
			return a.RespondedAt.Before(*b.RespondedAt)
		}
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
