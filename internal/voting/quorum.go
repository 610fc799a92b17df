package voting

import "ApprovalBot/internal/domain"

// Quorum is ceil(coreSize/2), never below one so an empty core team cannot
// approve anything by default.
func Quorum(coreSize int) int {
	q := (coreSize + 1) / 2
	if q < 1 {
		return 1
	}
	return q
}

type Tally struct {
	CoreApprovals        int
	CoreRejections       int
	MaintainerApprovals  int
	MaintainerRejections int
}

func TallyOf(state domain.AggregateState) Tally {
	return Tally{
		CoreApprovals:        len(state.CoreApprovals),
		CoreRejections:       len(state.CoreRejections),
		MaintainerApprovals:  len(state.MaintainerApprovals),
		MaintainerRejections: len(state.MaintainerRejections),
	}
}

// Evaluate maps the aggregated votes to a decision. timedOut is the caller's
// clock-driven override and wins over any vote count.
func Evaluate(kind domain.ProposalKind, state domain.AggregateState, timedOut bool) domain.Decision {
	if timedOut {
		return domain.DecisionTimedOut
	}

	t := TallyOf(state)
	switch kind {
	case domain.KindPipeline:
		return decide(t, 2)
	case domain.KindRFC:
		return decide(t, Quorum(state.CoreRosterSize))
	default:
		return domain.DecisionPending
	}
}

// decide applies the shared threshold shape: either `threshold` core votes,
// or at least one core vote topped up by maintainers to the threshold. For
// Pipeline the threshold is 2, which reads as "two core, or one core plus one
// maintainer". Rejection only counts while nobody has approved.
func decide(t Tally, threshold int) domain.Decision {
	if reaches(t.CoreApprovals, t.MaintainerApprovals, threshold) {
		return domain.DecisionApproved
	}
	if t.CoreApprovals == 0 && t.MaintainerApprovals == 0 &&
		reaches(t.CoreRejections, t.MaintainerRejections, threshold) {
		return domain.DecisionRejected
	}
	return domain.DecisionPending
}

func reaches(core, maintainers, threshold int) bool {
	if core >= threshold {
		return true
	}
	return core >= 1 && core+maintainers >= threshold
}

// Dismissed reports whether a thread closed as not planned should read as
// Rejected. Any counted rejection is enough; RFC only counts core votes.
func Dismissed(kind domain.ProposalKind, state domain.AggregateState) bool {
	t := TallyOf(state)
	switch kind {
	case domain.KindPipeline:
		return t.CoreRejections > 0 || t.MaintainerRejections > 0
	case domain.KindRFC:
		return t.CoreRejections > 0
	default:
		return false
	}
}
