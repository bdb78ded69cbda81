package schema

import "time"

// Summary holds the headline numbers of a report.
type Summary struct {
	TotalAmount           float64 `json:"total_amount"`
	GiftCount             int     `json:"gift_count"`
	DonorCount            int     `json:"donor_count"`
	AverageGift           float64 `json:"average_gift"`
	MedianGift            float64 `json:"median_gift"`
	LargestGift           float64 `json:"largest_gift"`
	SmallestGift          float64 `json:"smallest_gift"`
	LapsedDonors          int     `json:"lapsed_donors"`
	OpenPledgeTotal       float64 `json:"open_pledge_total"`
	DonorsWithOpenPledges int     `json:"donors_with_open_pledges"`
}

// CampaignSummary is one campaign's row in the report, ordered by total.
type CampaignSummary struct {
	Campaign string  `json:"campaign"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// DonorReport is the composite output of one run. It holds no shared mutable state.
type DonorReport struct {
	AsOf             time.Time             `json:"as_of"`
	Settings         Settings              `json:"settings"`
	Summary          Summary               `json:"summary"`
	Campaigns        []CampaignSummary     `json:"campaigns"`
	TopDonors        []RankedDonor         `json:"top_donors"`
	Donors           []DonorProfile        `json:"donors"`
	Concentration    ConcentrationResult   `json:"concentration"`
	Momentum         MomentumResult        `json:"momentum"`
	Retention        RetentionResult       `json:"retention"`
	Recency          []RecencyBucket       `json:"recency"`
	MonthlyTrend     []MonthlyTrendEntry   `json:"monthly_trend"`
	Acknowledgement  AcknowledgementResult `json:"acknowledgement"`
	Tiers            []TierSummary         `json:"tiers"`
	StewardshipQueue []StewardshipEntry    `json:"stewardship_queue"`
	OverduePledges   []OverduePledge       `json:"overdue_pledges"`
	Warnings         []string              `json:"warnings"`
}
