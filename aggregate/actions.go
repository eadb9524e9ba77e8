package aggregate

import "go-aduan/types"

var actionTemplates = map[types.Category][]string{
	types.Infrastructure: {
		"Dispatch a public works team to inspect the site",
		"Schedule repairs with the responsible roads or utilities office",
		"Place temporary warning signs until the repair is done",
	},
	types.Environment: {
		"Coordinate cleanup with the sanitation and environment office",
		"Check drainage and waterways near the reported area",
		"Inform residents about waste collection schedules",
	},
	types.Safety: {
		"Notify local police and neighbourhood security (siskamling)",
		"Add street lighting or patrols at the reported location",
		"Set up a hotline for follow-up incident reports",
	},
	types.Health: {
		"Alert the nearest puskesmas for an assessment",
		"Organise fogging or sanitation if disease vectors are reported",
		"Share prevention guidance with affected households",
	},
	types.Education: {
		"Forward the reports to the district education office",
		"Arrange a site visit to the affected school",
		"Engage the school committee on corrective steps",
	},
	types.Governance: {
		"Escalate to the inspectorate for review",
		"Publish the service standard and complaint channel",
		"Follow up with the responsible office within 7 days",
	},
	types.Social: {
		"Refer affected residents to the social services office",
		"Verify eligibility for existing assistance programmes",
		"Coordinate with RT/RW leaders for outreach",
	},
	types.Other: {
		"Review the reports and assign a responsible office",
		"Contact reporters for more detail",
	},
}

// SuggestedActions returns a fresh copy of the action template for cat.
func SuggestedActions(cat types.Category) []string {
	template, ok := actionTemplates[cat]
	if !ok {
		template = actionTemplates[types.Other]
	}
	return append([]string(nil), template...)
}
