package dto

// DimensionCount is one bucket of a grouped distinct-participant count.
type DimensionCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CategoryCounts partitions distinct checked-in participants by origin flags.
// "Not true" and NULL flags land in the false bucket.
type CategoryCounts struct {
	Invited              int64 `json:"invited"`
	RegisteredWalkIn     int64 `json:"registeredWalkIn"`
	AdultPopulation      int64 `json:"adultPopulation"`
	InvitedRegistered    int64 `json:"invitedRegistered"`
	InvitedNotRegistered int64 `json:"invitedNotRegistered"`
	TotalRegistered      int64 `json:"totalRegistered"`
	TotalNotRegistered   int64 `json:"totalNotRegistered"`
}

// EventStatisticsResponse is the per-event aggregation output.
type EventStatisticsResponse struct {
	EventID           uint             `json:"eventId"`
	TotalCheckIns     int64            `json:"totalCheckIns"`
	TotalParticipants int64            `json:"totalParticipants"`
	CheckedIn         int64            `json:"checkedIn"`
	Categories        CategoryCounts   `json:"categories"`
	Gender            []DimensionCount `json:"gender"`
	AgeGroups         []DimensionCount `json:"ageGroups"`
	CacheHit          bool             `json:"cacheHit,omitempty"`
}

// HierarchyBreakdownResponse is the grouped distinct-participant count for a
// geographic or categorical level, optionally filtered by its parent value.
type HierarchyBreakdownResponse struct {
	EventID    uint             `json:"eventId"`
	Level      string           `json:"level"`
	ParentName string           `json:"parentName,omitempty"`
	Breakdown  []DimensionCount `json:"breakdown"`
}

// StaffPerformanceEntry summarizes one staff member's check-in activity.
type StaffPerformanceEntry struct {
	UserID    uint     `json:"userId"`
	Name      string   `json:"name"`
	CheckIns  int64    `json:"checkIns"`
	Locations []string `json:"locations"`
}

// StaffPerformanceResponse lists staff sorted by check-in count descending.
type StaffPerformanceResponse struct {
	EventID *uint                   `json:"eventId,omitempty"`
	Staff   []StaffPerformanceEntry `json:"staff"`
}

// OverviewResponse is the global analytics shape. TotalParticipants counts
// every directory row regardless of ledger membership, unlike the per-event
// checkedIn figure.
type OverviewResponse struct {
	TotalEvents       int64            `json:"totalEvents"`
	TotalCheckIns     int64            `json:"totalCheckIns"`
	TotalParticipants int64            `json:"totalParticipants"`
	Categories        CategoryCounts   `json:"categories"`
	Gender            []DimensionCount `json:"gender"`
	AgeGroups         []DimensionCount `json:"ageGroups"`
}
