package verification

import (
	"strings"
	"time"

	"github.com/okestore/storefront-sync/internal/entitlements"
)

// PlanTerms is what a subscription plan grants on approval.
type PlanTerms struct {
	Duration       time.Duration
	DownloadsLimit int
}

const day = 24 * time.Hour

// planTable is matched by substring in order; the first match wins, so "Half-Yearly" must
// stay ahead of "Yearly".
var planTable = []struct {
	token string
	terms PlanTerms
}{
	{"Weekly", PlanTerms{Duration: 7 * day, DownloadsLimit: 12}},
	{"Fortnight", PlanTerms{Duration: 15 * day, DownloadsLimit: 25}},
	{"Monthly", PlanTerms{Duration: 30 * day, DownloadsLimit: 60}},
	{"Quarterly", PlanTerms{Duration: 90 * day, DownloadsLimit: 100}},
	{"Half-Yearly", PlanTerms{Duration: 180 * day, DownloadsLimit: 200}},
	{"Yearly", PlanTerms{Duration: 365 * day, DownloadsLimit: entitlements.UnlimitedDownloads}},
}

var defaultPlan = PlanTerms{Duration: 30 * day}

// TermsFor resolves a plan name against the plan table.
func TermsFor(planName string) PlanTerms {
	for _, row := range planTable {
		if strings.Contains(planName, row.token) {
			return row.terms
		}
	}
	return defaultPlan
}

// supportChatDuration is how long an approved support escalation keeps WhatsApp access open.
const supportChatDuration = 7 * day
