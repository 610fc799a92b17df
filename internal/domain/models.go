package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleCore       Role = "core"
	RoleMaintainer Role = "maintainer"
)

// RolePriority is the order in which roster membership is checked. The first
// role that lists an author is the only one the author counts towards.
var RolePriority = []Role{RoleCore, RoleMaintainer}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCore:
		return RoleCore, nil
	case RoleMaintainer, "maintainers":
		return RoleMaintainer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

type TeamRoster struct {
	Core        []string
	Maintainers []string
}

// Members returns the roster for role with duplicates removed, keeping the
// first occurrence.
func (r TeamRoster) Members(role Role) []string {
	switch role {
	case RoleCore:
		return dedupe(r.Core)
	case RoleMaintainer:
		return dedupe(r.Maintainers)
	default:
		return nil
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

type Comment struct {
	ID       int64
	Author   string
	Body     string
	Position int
}

type Directive int

const (
	DirectiveNone Directive = iota
	DirectiveApprove
	DirectiveReject
)

func (d Directive) String() string {
	switch d {
	case DirectiveApprove:
		return "approve"
	case DirectiveReject:
		return "reject"
	default:
		return "none"
	}
}

type Vote struct {
	Author    string
	Role      Role
	Directive Directive
}

type AggregateState struct {
	CoreApprovals        []string
	CoreRejections       []string
	MaintainerApprovals  []string
	MaintainerRejections []string
	AwaitingCore         []string
	AwaitingMaintainers  []string

	// CoreRosterSize feeds the RFC quorum.
	CoreRosterSize int
}

type Decision string

const (
	DecisionPending  Decision = "Pending"
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
	DecisionTimedOut Decision = "TimedOut"
)

type ProposalKind string

const (
	KindPipeline ProposalKind = "pipeline"
	KindRFC      ProposalKind = "rfc"
)

func ParseKind(s string) (ProposalKind, error) {
	switch ProposalKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPipeline:
		return KindPipeline, nil
	case KindRFC:
		return KindRFC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// KindFromTitle recognises a "[Pipeline]" or "[RFC]" prefix on a thread title.
func KindFromTitle(title string) (ProposalKind, bool) {
	title = strings.TrimSpace(title)
	if !strings.HasPrefix(title, "[") {
		return "", false
	}
	end := strings.Index(title, "]")
	if end < 0 {
		return "", false
	}
	kind, err := ParseKind(title[1:end])
	if err != nil {
		return "", false
	}
	return kind, true
}

func (k ProposalKind) DisplayName() string {
	switch k {
	case KindRFC:
		return "RFC"
	case KindPipeline:
		return "Pipeline"
	default:
		return string(k)
	}
}
