package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// Tier represents a lifetime-giving band.
	Tier string

	// DonorKey identifies a donor within a single run.
	DonorKey string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // ingest cache only
	NoneBackend       DatabaseBackend = "none"
)

// All donor tiers, ordered from largest to smallest.
const (
	MajorTier Tier = "major"
	MidTier   Tier = "mid"
	SmallTier Tier = "small"
)

// DefaultCampaign is used when a gift names no campaign.
const DefaultCampaign = "Unspecified"

// Fixed prefix sizes for the concentration metric.
const (
	ConcentrationTop5  = 5
	ConcentrationTop10 = 10
)

// RetentionWindowDays is the length of each retention cohort window.
const RetentionWindowDays = 365

// TrendMonths is the number of calendar months in the monthly trend.
const TrendMonths = 12

// AllTiers lists tiers in report order.
var AllTiers = []Tier{MajorTier, MidTier, SmallTier}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid ingest cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid history backends.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// RecencyBand describes one fixed days-since-last-gift interval.
type RecencyBand struct {
	Label   string
	MinDays int
	MaxDays *int // nil means open-ended
}

func intPtr(v int) *int { return &v }

// RecencyBands are the fixed, ordered, non-overlapping recency intervals.
var RecencyBands = []RecencyBand{
	{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
	{Label: "31-90", MinDays: 31, MaxDays: intPtr(90)},
	{Label: "91-180", MinDays: 91, MaxDays: intPtr(180)},
	{Label: "181-365", MinDays: 181, MaxDays: intPtr(365)},
	{Label: "366+", MinDays: 366},
}
