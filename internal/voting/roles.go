package voting

import "ApprovalBot/internal/domain"

// RoleResolver assigns every roster member exactly one role, walking
// domain.RolePriority so Core membership shadows Maintainer membership.
type RoleResolver struct {
	roles   map[string]domain.Role
	members map[domain.Role][]string
}

func NewRoleResolver(roster domain.TeamRoster) *RoleResolver {
	r := &RoleResolver{
		roles:   make(map[string]domain.Role),
		members: make(map[domain.Role][]string, len(domain.RolePriority)),
	}
	for _, role := range domain.RolePriority {
		for _, name := range roster.Members(role) {
			if _, taken := r.roles[name]; taken {
				continue
			}
			r.roles[name] = role
			r.members[role] = append(r.members[role], name)
		}
	}
	return r
}

func (r *RoleResolver) Resolve(author string) (domain.Role, bool) {
	role, ok := r.roles[author]
	return role, ok
}

// Members lists, in roster order, the users that count towards role.
func (r *RoleResolver) Members(role domain.Role) []string {
	return r.members[role]
}
