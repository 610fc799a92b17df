package httptransport

import (
	"errors"
	"fmt"

	"ApprovalBot/internal/domain"
)

type evaluateRequest struct {
	Thread           int    `json:"thread"`
	Kind             string `json:"kind"`
	TimedOut         bool   `json:"timed_out"`
	ClosedNotPlanned bool   `json:"closed_not_planned"`
}

func (r evaluateRequest) validate() (domain.ProposalKind, error) {
	if r.Thread <= 0 {
		return "", errors.New("thread must be a positive number")
	}
	if r.Kind == "" {
		return "", errors.New("kind is required")
	}
	return domain.ParseKind(r.Kind)
}

type setRosterRequest struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

func (r setRosterRequest) validate() (domain.Role, error) {
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return "", err
	}
	for i, member := range r.Members {
		if member == "" {
			return "", fmt.Errorf("members[%d] is empty", i)
		}
	}
	return role, nil
}

type addCommentRequest struct {
	Thread int     `json:"thread"`
	Author string  `json:"author"`
	Body   *string `json:"body"`
}

func (r addCommentRequest) validate() error {
	if r.Thread <= 0 {
		return errors.New("thread must be a positive number")
	}
	if r.Author == "" {
		return errors.New("author is required")
	}
	return nil
}

func (r addCommentRequest) body() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}
