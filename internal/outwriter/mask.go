package outwriter

import (
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
)

// maskReport returns the report unchanged, or a copy with donor names and emails
// masked when --mask-names is set. Donor keys are left intact.
func maskReport(report *schema.DonorReport, cfg *contract.Config) *schema.DonorReport {
	if !cfg.MaskNames {
		return report
	}
	out := *report

	out.Donors = make([]schema.DonorProfile, len(report.Donors))
	for i, p := range report.Donors {
		out.Donors[i] = maskProfile(p)
	}

	out.TopDonors = make([]schema.RankedDonor, len(report.TopDonors))
	for i, d := range report.TopDonors {
		d.DonorProfile = maskProfile(d.DonorProfile)
		out.TopDonors[i] = d
	}

	out.StewardshipQueue = make([]schema.StewardshipEntry, len(report.StewardshipQueue))
	for i, e := range report.StewardshipQueue {
		e.DonorProfile = maskProfile(e.DonorProfile)
		out.StewardshipQueue[i] = e
	}

	out.OverduePledges = make([]schema.OverduePledge, len(report.OverduePledges))
	for i, o := range report.OverduePledges {
		o.DisplayName = schema.MaskDonorLabel(o.DisplayName)
		out.OverduePledges[i] = o
	}

	ack := report.Acknowledgement
	ack.Unacknowledged = make([]schema.UnacknowledgedDonor, len(report.Acknowledgement.Unacknowledged))
	for i, u := range report.Acknowledgement.Unacknowledged {
		u.DisplayName = schema.MaskDonorLabel(u.DisplayName)
		ack.Unacknowledged[i] = u
	}
	out.Acknowledgement = ack

	return &out
}

func maskProfile(p schema.DonorProfile) schema.DonorProfile {
	p = p.Clone()
	if p.DisplayName != "" {
		p.DisplayName = schema.AbbreviateName(p.DisplayName)
	}
	if p.DisplayEmail != "" {
		p.DisplayEmail = schema.MaskEmail(p.DisplayEmail)
	}
	return p
}
