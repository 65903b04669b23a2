package billing

import "pmblueprints/internal/domain/user"

// Plan describes a subscription plan offered at checkout.
type Plan struct {
	Tier     string   `json:"tier"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"` // cents per interval
	Currency string   `json:"currency"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
}

// TemplatePriceCents is the a-la-carte price of a single premium template.
const TemplatePriceCents int64 = 1500

// Plans is the static plan catalog.
var Plans = map[string]Plan{
	user.TierFree: {
		Tier:     user.TierFree,
		Name:     "Free",
		Price:    0,
		Currency: "usd",
		Interval: "month",
		Features: []string{
			"3 template downloads/month",
			"Basic templates",
			"3 AI generations/month",
			"Email support",
		},
	},
	user.TierProfessional: {
		Tier:     user.TierProfessional,
		Name:     "Professional",
		Price:    5000,
		Currency: "usd",
		Interval: "month",
		Features: []string{
			"10 template downloads/month",
			"All 960+ templates",
			"25 AI generations/month",
			"Platform integrations",
			"Priority support",
		},
	},
	user.TierEnterprise: {
		Tier:     user.TierEnterprise,
		Name:     "Enterprise",
		Price:    15000,
		Currency: "usd",
		Interval: "month",
		Features: []string{
			"Unlimited downloads",
			"All 960+ templates",
			"100 AI generations/month",
			"Custom templates",
			"Advanced analytics",
			"Dedicated support",
		},
	},
}

// PlanFor returns the plan for a tier.
func PlanFor(tier string) (Plan, bool) {
	p, ok := Plans[tier]
	return p, ok
}
