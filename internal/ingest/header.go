package ingest

import "strings"

// field is a canonical gift column.
type field string

const (
	fieldDonorID       field = "donor_id"
	fieldDonorName     field = "donor_name"
	fieldEmail         field = "email"
	fieldGiftDate      field = "gift_date"
	fieldGiftAmount    field = "gift_amount"
	fieldPledgeAmount  field = "pledge_amount"
	fieldPledgeDueDate field = "pledge_due_date"
	fieldCampaign      field = "campaign"
	fieldAcknowledged  field = "acknowledged"
	fieldAckDate       field = "ack_date"
)

// headerAliases maps every accepted normalized header to its canonical field.
var headerAliases = buildAliases(map[field][]string{
	fieldDonorID:       {"donor_id", "id", "constituent_id", "donor_number"},
	fieldDonorName:     {"donor_name", "name", "full_name", "donor"},
	fieldEmail:         {"email", "donor_email", "email_address"},
	fieldGiftDate:      {"gift_date", "date", "donation_date", "received_date"},
	fieldGiftAmount:    {"gift_amount", "amount", "donation_amount", "gift"},
	fieldPledgeAmount:  {"pledge_amount", "pledge", "pledged_amount"},
	fieldPledgeDueDate: {"pledge_due_date", "due_date", "pledge_due"},
	fieldCampaign:      {"campaign", "appeal", "fund", "campaign_name"},
	fieldAcknowledged:  {"acknowledged", "ack", "thanked", "acknowledgement_sent"},
	fieldAckDate:       {"ack_date", "acknowledged_date", "acknowledgement_date", "thank_you_date"},
})

func buildAliases(in map[field][]string) map[string]field {
	out := make(map[string]field)
	for f, names := range in {
		for _, n := range names {
			out[n] = f
		}
	}
	return out
}

// NormalizeHeader lower-cases a header and folds spaces and dashes into underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

// mapHeader returns the column index of each recognized field. The first
// matching column wins when several alias the same field.
func mapHeader(header []string) map[field]int {
	cols := make(map[field]int)
	for i, h := range header {
		f, ok := headerAliases[NormalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}
	return cols
}
