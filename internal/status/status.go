// Package status turns a decision into the thread label and the single status
// comment, and works out which mutation brings the thread up to date.
package status

import (
	"fmt"
	"strings"

	"ApprovalBot/internal/domain"
)

const (
	Marker = "## Approval status:"

	LabelProposed   = "proposed"
	LabelAccepted   = "accepted"
	LabelTurnedDown = "turned-down"
	LabelTimedOut   = "timed-out"

	DefaultProfileBase = "https://github.com/"

	emptyList = "-"
)

// Label maps a decision to its status label. Anything unrecognised is treated
// as Pending.
func Label(decision domain.Decision) string {
	switch decision {
	case domain.DecisionApproved:
		return LabelAccepted
	case domain.DecisionRejected:
		return LabelTurnedDown
	case domain.DecisionTimedOut:
		return LabelTimedOut
	default:
		return LabelProposed
	}
}

type Action string

const (
	ActionNone   Action = "none"
	ActionUpdate Action = "update"
	ActionCreate Action = "create"
)

type Result struct {
	Labels []string
	Action Action
	// CommentID is set when an existing status comment was found.
	CommentID *int64
	Body      string
}

type Reconciler struct {
	profileBase string
}

func NewReconciler(profileBase string) *Reconciler {
	if profileBase == "" {
		profileBase = DefaultProfileBase
	}
	if !strings.HasSuffix(profileBase, "/") {
		profileBase += "/"
	}
	return &Reconciler{profileBase: profileBase}
}

func (r *Reconciler) Render(decision domain.Decision, kind domain.ProposalKind, state domain.AggregateState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", Marker, decision)
	fmt.Fprintf(&b, "Proposal kind: %s\n\n", kind.DisplayName())
	b.WriteString("| | Core | Maintainers |\n")
	b.WriteString("|---|---|---|\n")
	fmt.Fprintf(&b, "| Approved | %s | %s |\n", r.formatList(state.CoreApprovals), r.formatList(state.MaintainerApprovals))
	fmt.Fprintf(&b, "| Rejected | %s | %s |\n", r.formatList(state.CoreRejections), r.formatList(state.MaintainerRejections))
	fmt.Fprintf(&b, "| Awaiting | %s | %s |\n", r.formatList(state.AwaitingCore), r.formatList(state.AwaitingMaintainers))
	return b.String()
}

func (r *Reconciler) formatList(users []string) string {
	if len(users) == 0 {
		return emptyList
	}
	links := make([]string, 0, len(users))
	for _, user := range users {
		links = append(links, r.profileLink(user))
	}
	return strings.Join(links, ", ")
}

func (r *Reconciler) profileLink(user string) string {
	return fmt.Sprintf("[@%s](%s%s)", user, r.profileBase, user)
}

// Reconcile renders the status body and diffs it against the status comment
// already on the thread.
func (r *Reconciler) Reconcile(decision domain.Decision, kind domain.ProposalKind, state domain.AggregateState, current []domain.Comment) Result {
	body := r.Render(decision, kind, state)
	result := Result{
		Labels: []string{Label(decision)},
		Action: ActionCreate,
		Body:   body,
	}

	existing, ok := FindStatusComment(current)
	if !ok {
		return result
	}

	id := existing.ID
	result.CommentID = &id
	if strings.TrimSpace(existing.Body) == strings.TrimSpace(body) {
		result.Action = ActionNone
	} else {
		result.Action = ActionUpdate
	}
	return result
}

// FindStatusComment returns the first comment whose untrimmed body starts
// with Marker.
func FindStatusComment(comments []domain.Comment) (domain.Comment, bool) {
	for _, comment := range comments {
		if strings.HasPrefix(comment.Body, Marker) {
			return comment, true
		}
	}
	return domain.Comment{}, false
}
