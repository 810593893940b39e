package domain

// Project lifecycle statuses.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusActive    = "active"
	ProjectStatusFunded    = "funded"
	ProjectStatusEnded     = "ended"
	ProjectStatusCancelled = "cancelled"
)

// Contribution status. Only completed contributions are recorded; the gateway
// confirmation arrives after the payer has already paid.
const ContributionStatusCompleted = "completed"

// Sort keys accepted by the project listing.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortMostFunded = "most-funded"
	SortEndingSoon = "ending-soon"
)
