package voting

import (
	"sort"

	"ApprovalBot/internal/domain"
)

// FinalVotes replays comments in arrival order and keeps the last directive
// of every author that holds a role.
func FinalVotes(resolver *RoleResolver, comments []domain.Comment) map[string]domain.Vote {
	ordered := append([]domain.Comment(nil), comments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	votes := make(map[string]domain.Vote)
	for _, comment := range ordered {
		role, ok := resolver.Resolve(comment.Author)
		if !ok {
			continue
		}
		directive := ParseComment(comment.Body)
		if directive == domain.DirectiveNone {
			continue
		}
		votes[comment.Author] = domain.Vote{
			Author:    comment.Author,
			Role:      role,
			Directive: directive,
		}
	}
	return votes
}

// Aggregate recomputes the vote sets from scratch. It never looks at a
// previous result, so running it twice on the same snapshot is a no-op.
func Aggregate(roster domain.TeamRoster, comments []domain.Comment) domain.AggregateState {
	resolver := NewRoleResolver(roster)
	votes := FinalVotes(resolver, comments)

	state := domain.AggregateState{
		CoreRosterSize: len(roster.Members(domain.RoleCore)),
	}

	state.CoreApprovals, state.CoreRejections = split(resolver.Members(domain.RoleCore), votes)
	state.MaintainerApprovals, state.MaintainerRejections = split(resolver.Members(domain.RoleMaintainer), votes)
	state.AwaitingCore = awaiting(roster.Members(domain.RoleCore), state.CoreApprovals, state.CoreRejections)
	state.AwaitingMaintainers = awaiting(roster.Members(domain.RoleMaintainer), state.MaintainerApprovals, state.MaintainerRejections)

	return state
}

func split(members []string, votes map[string]domain.Vote) (approvals, rejections []string) {
	approvals = []string{}
	rejections = []string{}
	for _, name := range members {
		vote, ok := votes[name]
		if !ok {
			continue
		}
		switch vote.Directive {
		case domain.DirectiveApprove:
			approvals = append(approvals, name)
		case domain.DirectiveReject:
			rejections = append(rejections, name)
		}
	}
	return approvals, rejections
}

// awaiting is the full role roster minus whoever voted under that role. A
// user listed for both roles who voted as core still awaits as maintainer.
func awaiting(members, approvals, rejections []string) []string {
	voted := make(map[string]struct{}, len(approvals)+len(rejections))
	for _, name := range approvals {
		voted[name] = struct{}{}
	}
	for _, name := range rejections {
		voted[name] = struct{}{}
	}

	out := []string{}
	for _, name := range members {
		if _, ok := voted[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
