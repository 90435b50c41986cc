package enums

// ApprovalOutcome records what an approval attempt actually did.
type ApprovalOutcome string

const (
	ApprovalOutcomeApplied    ApprovalOutcome = "applied"
	ApprovalOutcomeUnresolved ApprovalOutcome = "unresolved"
	ApprovalOutcomeMissing    ApprovalOutcome = "missing"
	ApprovalOutcomeDiscarded  ApprovalOutcome = "discarded"
)

// String implements fmt.Stringer.
func (o ApprovalOutcome) String() string {
	return string(o)
}
