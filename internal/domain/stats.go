package domain

// InquiryStats summarizes the full inquiry population for admins. Computed on
// demand; counters are never maintained incrementally.
type InquiryStats struct {
	Total             int64
	ByStatus          map[InquiryStatus]int64
	ByType            map[InquiryType]int64
	ByPriority        map[InquiryPriority]int64
	Recent            int64 // created within the last 7 days
	UrgentOutstanding int64 // priority urgent, status pending or in_progress
	AvgResponseHours  float64
	TotalResponses    int64
}

// AuthorSummary accompanies a student's inquiry listing.
type AuthorSummary struct {
	Total              int64
	PendingCount       int64
	InProgressCount    int64
	ResolvedCount      int64
	CourseRequestCount int64
	TechnicalCount     int64
	UnreadCount        int64
	AvgResponseDays    float64
}
