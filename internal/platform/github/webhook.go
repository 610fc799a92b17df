package github

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v71/github"

	"ApprovalBot/internal/domain"
	"ApprovalBot/internal/status"
)

var ErrWebhookSecretMissing = errors.New("webhook secret is not configured")

// Event is the part of an issues or issue_comment delivery an evaluation run
// needs.
type Event struct {
	Thread int
	Kind   domain.ProposalKind
	Sender string

	TimedOut         bool
	ClosedNotPlanned bool
}

// ParseEvent validates the delivery signature and maps it to an evaluation
// run. ok is false for deliveries that should not trigger a run: other event
// types, comments on closed threads, labels other than timed-out and threads
// whose title carries no proposal kind.
func ParseEvent(r *http.Request, secret []byte) (event Event, ok bool, err error) {
	if len(secret) == 0 {
		return Event{}, false, ErrWebhookSecretMissing
	}

	payload, err := github.ValidatePayload(r, secret)
	if err != nil {
		return Event{}, false, fmt.Errorf("validate payload: %w", err)
	}

	eventType := github.WebHookType(r)
	if eventType != "issue_comment" && eventType != "issues" {
		return Event{}, false, nil
	}

	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return Event{}, false, fmt.Errorf("parse webhook: %w", err)
	}

	switch ev := parsed.(type) {
	case *github.IssueCommentEvent:
		event, ok = fromComment(ev)
	case *github.IssuesEvent:
		event, ok = fromIssue(ev)
	}
	return event, ok, nil
}

func fromComment(ev *github.IssueCommentEvent) (Event, bool) {
	issue := ev.GetIssue()
	if issue.GetState() == "closed" {
		return Event{}, false
	}

	kind, known := domain.KindFromTitle(issue.GetTitle())
	if !known {
		return Event{}, false
	}

	return Event{
		Thread: issue.GetNumber(),
		Kind:   kind,
		Sender: ev.GetComment().GetUser().GetLogin(),
	}, true
}

func fromIssue(ev *github.IssuesEvent) (Event, bool) {
	issue := ev.GetIssue()
	kind, known := domain.KindFromTitle(issue.GetTitle())
	if !known {
		return Event{}, false
	}

	event := Event{
		Thread: issue.GetNumber(),
		Kind:   kind,
		Sender: ev.GetSender().GetLogin(),
	}

	switch ev.GetAction() {
	case "opened", "reopened", "edited":
		return event, true
	case "labeled":
		if ev.GetLabel().GetName() != status.LabelTimedOut {
			return Event{}, false
		}
		event.TimedOut = true
		return event, true
	case "closed":
		event.ClosedNotPlanned = issue.GetStateReason() == "not_planned"
		return event, true
	default:
		return Event{}, false
	}
}
