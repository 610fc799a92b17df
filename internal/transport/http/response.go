package httptransport

import (
	"encoding/json"
	"net/http"

	"ApprovalBot/internal/domain"
	"ApprovalBot/internal/service"
)

type errorResponse struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type outcomePayload struct {
	RunID         string       `json:"run_id"`
	Thread        int          `json:"thread"`
	Kind          string       `json:"kind"`
	Decision      string       `json:"decision"`
	Labels        []string     `json:"labels"`
	CommentAction string       `json:"comment_action"`
	CommentID     *int64       `json:"comment_id,omitempty"`
	Applied       bool         `json:"applied"`
	Votes         votesPayload `json:"votes"`
	Body          string       `json:"body"`
}

type votesPayload struct {
	CoreApprovals        []string `json:"core_approvals"`
	CoreRejections       []string `json:"core_rejections"`
	MaintainerApprovals  []string `json:"maintainer_approvals"`
	MaintainerRejections []string `json:"maintainer_rejections"`
	AwaitingCore         []string `json:"awaiting_core"`
	AwaitingMaintainers  []string `json:"awaiting_maintainers"`
}

type commentPayload struct {
	ID       int64  `json:"id"`
	Thread   int    `json:"thread"`
	Author   string `json:"author"`
	Body     string `json:"body"`
	Position int    `json:"position"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	})
}

func mapOutcome(out service.Outcome) outcomePayload {
	return outcomePayload{
		RunID:         out.RunID,
		Thread:        out.Thread,
		Kind:          string(out.Kind),
		Decision:      string(out.Decision),
		Labels:        append([]string(nil), out.Labels...),
		CommentAction: string(out.Action),
		CommentID:     out.CommentID,
		Applied:       out.Applied,
		Votes:         mapVotes(out.State),
		Body:          out.Body,
	}
}

func mapVotes(state domain.AggregateState) votesPayload {
	return votesPayload{
		CoreApprovals:        nonNil(state.CoreApprovals),
		CoreRejections:       nonNil(state.CoreRejections),
		MaintainerApprovals:  nonNil(state.MaintainerApprovals),
		MaintainerRejections: nonNil(state.MaintainerRejections),
		AwaitingCore:         nonNil(state.AwaitingCore),
		AwaitingMaintainers:  nonNil(state.AwaitingMaintainers),
	}
}

func mapComment(thread int, c domain.Comment) commentPayload {
	return commentPayload{
		ID:       c.ID,
		Thread:   thread,
		Author:   c.Author,
		Body:     c.Body,
		Position: c.Position,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
