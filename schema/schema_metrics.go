package schema

import "time"

// ConcentrationResult is the share of total giving held by the largest donors.
type ConcentrationResult struct {
	DonorCount int     `json:"donor_count"`
	Top5Total  float64 `json:"top5_total"`
	Top10Total float64 `json:"top10_total"`
	Top5Share  float64 `json:"top5_share"`
	Top10Share float64 `json:"top10_share"`
}

// MomentumResult compares the recent window against the one immediately before it.
type MomentumResult struct {
	RecentDays        int       `json:"recent_days"`
	RecentStart       time.Time `json:"recent_start"`
	PriorStart        time.Time `json:"prior_start"`
	RecentTotal       float64   `json:"recent_total"`
	RecentCount       int       `json:"recent_count"`
	PriorTotal        float64   `json:"prior_total"`
	PriorCount        int       `json:"prior_count"`
	TotalDelta        float64   `json:"total_delta"`
	CountDelta        int       `json:"count_delta"`
	TotalDeltaPct     float64   `json:"total_delta_pct"`
	NewDonors         int       `json:"new_donors"`
	ReactivatedDonors int       `json:"reactivated_donors"`
	AvgGapDays        *float64  `json:"avg_gap_days"`
}

// RetentionResult classifies donors across two consecutive 365-day cohorts.
type RetentionResult struct {
	RecentStart         time.Time `json:"recent_start"`
	PriorStart          time.Time `json:"prior_start"`
	PriorDonors         int       `json:"prior_donors"`
	RecentDonors        int       `json:"recent_donors"`
	Retained            int       `json:"retained"`
	Reactivated         int       `json:"reactivated"`
	Churned             int       `json:"churned"`
	RetentionRate       float64   `json:"retention_rate"`
	PriorValue          float64   `json:"prior_value"`
	RecentValue         float64   `json:"recent_value"`
	RetainedPriorValue  float64   `json:"retained_prior_value"`
	RetainedRecentValue float64   `json:"retained_recent_value"`
	ValueRetentionRate  float64   `json:"value_retention_rate"`
}

// RecencyBucket is one band of the days-since-last-gift distribution.
type RecencyBucket struct {
	Label       string  `json:"label"`
	MinDays     int     `json:"min_days"`
	MaxDays     *int    `json:"max_days"`
	DonorCount  int     `json:"donor_count"`
	TotalAmount float64 `json:"total_amount"`
	DonorShare  float64 `json:"donor_share"`
	AmountShare float64 `json:"amount_share"`
}

// MonthlyTrendEntry is giving for one calendar month.
type MonthlyTrendEntry struct {
	Month string    `json:"month"` // YYYY-MM
	Start time.Time `json:"start"`
	Total float64   `json:"total"`
	Count int       `json:"count"`
}

// UnacknowledgedDonor groups a donor's overdue, unacknowledged gifts.
type UnacknowledgedDonor struct {
	Key         DonorKey  `json:"key"`
	DisplayName string    `json:"display_name"`
	Total       float64   `json:"total"`
	Count       int       `json:"count"`
	LatestGift  time.Time `json:"latest_gift"`
}

// AcknowledgementResult summarizes thank-you performance.
type AcknowledgementResult struct {
	AckDays             int                   `json:"ack_days"`
	Cutoff              time.Time             `json:"cutoff"`
	AcknowledgedRate    float64               `json:"acknowledged_rate"`
	MeasuredCount       int                   `json:"measured_count"`
	MeanLatencyDays     *float64              `json:"mean_latency_days"`
	MedianLatencyDays   *float64              `json:"median_latency_days"`
	OnTimeRate          float64               `json:"on_time_rate"`
	UnacknowledgedCount int                   `json:"unacknowledged_count"`
	UnacknowledgedTotal float64               `json:"unacknowledged_total"`
	Unacknowledged      []UnacknowledgedDonor `json:"unacknowledged"`
}

// TierSummary is the count and total for one tier.
type TierSummary struct {
	Tier  Tier    `json:"tier"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// OverduePledge is a donor whose earliest pledge due date has passed with money still open.
type OverduePledge struct {
	Key         DonorKey  `json:"key"`
	DisplayName string    `json:"display_name"`
	OpenAmount  float64   `json:"open_amount"`
	EarliestDue time.Time `json:"earliest_due"`
	DaysOverdue int       `json:"days_overdue"`
}

// RankedDonor is a donor profile with its position and tier.
type RankedDonor struct {
	Rank int  `json:"rank"`
	Tier Tier `json:"tier"`
	DonorProfile
}
