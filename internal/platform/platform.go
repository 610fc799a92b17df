// Package platform declares the collaborators an evaluation run talks to:
// where rosters and comments come from and where labels and the status
// comment go.
package platform

import (
	"context"

	"ApprovalBot/internal/domain"
)

type Platform interface {
	// FetchRoster returns the members of role in roster order. Failures wrap
	// domain.ErrRosterFetch.
	FetchRoster(ctx context.Context, role domain.Role) ([]string, error)
	// FetchComments returns the thread's comments in arrival order. Failures
	// wrap domain.ErrCommentFetch.
	FetchComments(ctx context.Context, thread int) ([]domain.Comment, error)

	ReplaceLabels(ctx context.Context, thread int, labels []string) error
	// UpsertComment edits existingID in place, or creates a new comment when
	// existingID is nil.
	UpsertComment(ctx context.Context, thread int, existingID *int64, body string) error
}

// Ingester is implemented by platforms that own their data rather than
// mirroring a remote service.
type Ingester interface {
	SetRoster(ctx context.Context, role domain.Role, members []string) error
	AddComment(ctx context.Context, thread int, author, body string) (domain.Comment, error)
	Labels(ctx context.Context, thread int) ([]string, error)
}

type HealthChecker interface {
	Health(ctx context.Context) error
}

// Wrapper is implemented by platforms that decorate another platform.
type Wrapper interface {
	Unwrap() Platform
}

// As walks the Unwrap chain of p and returns the first layer implementing T.
func As[T any](p Platform) (T, bool) {
	for p != nil {
		if t, ok := p.(T); ok {
			return t, true
		}
		w, ok := p.(Wrapper)
		if !ok {
			break
		}
		p = w.Unwrap()
	}
	var zero T
	return zero, false
}
