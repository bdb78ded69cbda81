// Package schema holds the data model shared by the donorlens packages.
package schema

import "time"

// GiftRecord is one validated gift row produced by ingestion.
type GiftRecord struct {
	DonorID       string     `json:"donor_id,omitempty"`
	DonorName     string     `json:"donor_name,omitempty"`
	DonorEmail    string     `json:"donor_email,omitempty"`
	GiftDate      time.Time  `json:"gift_date"`
	GiftAmount    float64    `json:"gift_amount"`
	PledgeAmount  *float64   `json:"pledge_amount,omitempty"`
	PledgeDueDate *time.Time `json:"pledge_due_date,omitempty"`
	Campaign      string     `json:"campaign"`
	Acknowledged  bool       `json:"acknowledged"`
	AckDate       *time.Time `json:"ack_date,omitempty"`
	Row           int        `json:"row"` // 1-based data row, header excluded
}

// DonorProfile is the per-donor rollup. It is only mutated by the rollup builder.
type DonorProfile struct {
	Key            DonorKey    `json:"key"`
	DisplayName    string      `json:"display_name"`
	DisplayEmail   string      `json:"display_email"`
	DisplayID      string      `json:"display_id"`
	TotalAmount    float64     `json:"total_amount"`
	GiftCount      int         `json:"gift_count"`
	FirstGiftDate  time.Time   `json:"first_gift_date"`
	LastGiftDate   time.Time   `json:"last_gift_date"`
	PledgeTotal    float64     `json:"pledge_total"`
	PledgeDueDates []time.Time `json:"pledge_due_dates"` // sorted, unique
	GiftDates      []time.Time `json:"gift_dates"`       // sorted, unique
}

// Label returns the best human-readable identifier for the donor.
func (p DonorProfile) Label() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.DisplayEmail != "":
		return p.DisplayEmail
	case p.DisplayID != "":
		return p.DisplayID
	}
	return string(p.Key)
}

// Clone returns a deep copy of the profile.
func (p DonorProfile) Clone() DonorProfile {
	out := p
	out.PledgeDueDates = append([]time.Time(nil), p.PledgeDueDates...)
	out.GiftDates = append([]time.Time(nil), p.GiftDates...)
	return out
}

// CampaignTotal is the running total for one campaign.
type CampaignTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// GiftStats is the global rollup over every gift.
type GiftStats struct {
	TotalAmount   float64                  `json:"total_amount"`
	GiftCount     int                      `json:"gift_count"`
	SortedAmounts []float64                `json:"sorted_amounts"`
	Campaigns     map[string]CampaignTotal `json:"campaigns"`
}

// KeyedGift pairs a gift with the donor key it resolved to.
type KeyedGift struct {
	Key  DonorKey
	Gift GiftRecord
}

// OpenPledgeView is a donor profile plus its unmet pledge amount.
type OpenPledgeView struct {
	DonorProfile
	OpenAmount float64 `json:"open_amount"`
}

// NewOpenPledgeView derives the open pledge view for a profile. Open amounts are never negative.
func NewOpenPledgeView(p DonorProfile) OpenPledgeView {
	open := p.PledgeTotal - p.TotalAmount
	if open < 0 {
		open = 0
	}
	return OpenPledgeView{DonorProfile: p.Clone(), OpenAmount: open}
}

// StewardshipEntry is one scored row of the stewardship queue.
type StewardshipEntry struct {
	OpenPledgeView
	PriorityScore     float64 `json:"priority_score"`
	Lapsed            bool    `json:"lapsed"`
	DaysSinceLastGift int     `json:"days_since_last_gift"`
}
