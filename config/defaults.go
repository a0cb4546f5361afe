package config

import "time"

// Default runtime limits and guardrails for the SellerScope audit server.
// They are referenced by internal/runtime and overridden through Load.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxConcurrentParses   = 4
	DefaultMaxSessions           = 16

	// Paging
	DefaultPageSize = 50
	MaxPageSize     = 500
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
)

const (
	// Audit tuning
	DefaultMarketplace   = "US"
	DefaultBreakevenACoS = 30.0
	DefaultHeroTopN      = 3
)

// Category Listing Report layout (0-based). These follow the current
// template version of the report; a new template only changes these values.
const (
	CategoryListingSheet     = "Template"
	CategoryListingHeaderRow = 3
	CategoryListingDataRow   = 6
)
