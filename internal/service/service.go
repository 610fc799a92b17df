package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ApprovalBot/internal/domain"
	"ApprovalBot/internal/platform"
	"ApprovalBot/internal/status"
	"ApprovalBot/internal/voting"
)

type Service interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (Outcome, error)
	Preview(ctx context.Context, thread int, kind domain.ProposalKind) (Outcome, error)

	SetRoster(ctx context.Context, role domain.Role, members []string) error
	AddComment(ctx context.Context, thread int, author, body string) (domain.Comment, error)
	Labels(ctx context.Context, thread int) ([]string, error)

	Health(ctx context.Context) error
}

type EvaluateRequest struct {
	Thread int
	Kind   domain.ProposalKind
	// TimedOut is the clock-driven override decided by whoever schedules the
	// run.
	TimedOut bool
	// ClosedNotPlanned marks a run triggered by the thread being closed as
	// not planned; any counted rejection then turns it down.
	ClosedNotPlanned bool
}

type Outcome struct {
	RunID     string
	Thread    int
	Kind      domain.ProposalKind
	Decision  domain.Decision
	State     domain.AggregateState
	Labels    []string
	Action    status.Action
	CommentID *int64
	Body      string
	Applied   bool
}

type ApprovalService struct {
	platform   platform.Platform
	reconciler *status.Reconciler
	logger     *slog.Logger
}

func New(p platform.Platform, reconciler *status.Reconciler, logger *slog.Logger) *ApprovalService {
	if reconciler == nil {
		reconciler = status.NewReconciler("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalService{
		platform:   p,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (s *ApprovalService) Evaluate(ctx context.Context, req EvaluateRequest) (Outcome, error) {
	return s.run(ctx, req, true)
}

func (s *ApprovalService) Preview(ctx context.Context, thread int, kind domain.ProposalKind) (Outcome, error) {
	return s.run(ctx, EvaluateRequest{Thread: thread, Kind: kind}, false)
}

// run is one full evaluation: fetch the snapshot, recompute everything from
// it and, when apply is set, push the label and status comment. A fetch error
// aborts before anything is written.
func (s *ApprovalService) run(ctx context.Context, req EvaluateRequest, apply bool) (Outcome, error) {
	if _, err := domain.ParseKind(string(req.Kind)); err != nil {
		return Outcome{}, err
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "thread", req.Thread, "kind", req.Kind)

	roster, err := s.fetchRoster(ctx)
	if err != nil {
		logger.Error("roster fetch failed", "error", err)
		return Outcome{}, err
	}

	comments, err := s.platform.FetchComments(ctx, req.Thread)
	if err != nil {
		logger.Error("comment fetch failed", "error", err)
		return Outcome{}, err
	}

	state := voting.Aggregate(roster, comments)
	decision := voting.Evaluate(req.Kind, state, req.TimedOut)
	if req.ClosedNotPlanned && !req.TimedOut && voting.Dismissed(req.Kind, state) {
		decision = domain.DecisionRejected
	}
	result := s.reconciler.Reconcile(decision, req.Kind, state, comments)

	outcome := Outcome{
		RunID:     runID,
		Thread:    req.Thread,
		Kind:      req.Kind,
		Decision:  decision,
		State:     state,
		Labels:    result.Labels,
		Action:    result.Action,
		CommentID: result.CommentID,
		Body:      result.Body,
	}

	if !apply {
		logger.Debug("preview computed", "decision", decision, "action", result.Action)
		return outcome, nil
	}

	if err := s.apply(ctx, req.Thread, result); err != nil {
		logger.Error("apply status failed", "decision", decision, "error", err)
		return Outcome{}, err
	}
	outcome.Applied = true

	logger.Info("proposal evaluated",
		"decision", decision,
		"action", result.Action,
		"core_approvals", len(state.CoreApprovals),
		"core_rejections", len(state.CoreRejections),
		"maintainer_approvals", len(state.MaintainerApprovals),
		"maintainer_rejections", len(state.MaintainerRejections),
	)
	return outcome, nil
}

func (s *ApprovalService) fetchRoster(ctx context.Context) (domain.TeamRoster, error) {
	core, err := s.platform.FetchRoster(ctx, domain.RoleCore)
	if err != nil {
		return domain.TeamRoster{}, err
	}
	maintainers, err := s.platform.FetchRoster(ctx, domain.RoleMaintainer)
	if err != nil {
		return domain.TeamRoster{}, err
	}
	return domain.TeamRoster{Core: core, Maintainers: maintainers}, nil
}

// apply leaves the thread alone when the stored status body already matches,
// since the label was written together with it.
func (s *ApprovalService) apply(ctx context.Context, thread int, result status.Result) error {
	if result.Action == status.ActionNone {
		return nil
	}
	if err := s.platform.ReplaceLabels(ctx, thread, result.Labels); err != nil {
		return fmt.Errorf("replace labels: %w", err)
	}

	switch result.Action {
	case status.ActionUpdate:
		if err := s.platform.UpsertComment(ctx, thread, result.CommentID, result.Body); err != nil {
			return fmt.Errorf("update status comment: %w", err)
		}
	case status.ActionCreate:
		if err := s.platform.UpsertComment(ctx, thread, nil, result.Body); err != nil {
			return fmt.Errorf("create status comment: %w", err)
		}
	}
	return nil
}

func (s *ApprovalService) SetRoster(ctx context.Context, role domain.Role, members []string) error {
	ingester, ok := platform.As[platform.Ingester](s.platform)
	if !ok {
		return domain.ErrIngestUnsupported
	}
	return ingester.SetRoster(ctx, role, members)
}

func (s *ApprovalService) AddComment(ctx context.Context, thread int, author, body string) (domain.Comment, error) {
	ingester, ok := platform.As[platform.Ingester](s.platform)
	if !ok {
		return domain.Comment{}, domain.ErrIngestUnsupported
	}
	return ingester.AddComment(ctx, thread, author, body)
}

func (s *ApprovalService) Labels(ctx context.Context, thread int) ([]string, error) {
	ingester, ok := platform.As[platform.Ingester](s.platform)
	if !ok {
		return nil, domain.ErrIngestUnsupported
	}
	return ingester.Labels(ctx, thread)
}

func (s *ApprovalService) Health(ctx context.Context) error {
	checker, ok := platform.As[platform.HealthChecker](s.platform)
	if !ok {
		return nil
	}
	return checker.Health(ctx)
}
