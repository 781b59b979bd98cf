package entities

import (
	"strings"
	"time"
)

// Role enumerates user roles.
type Role string

const (
	// RoleManager owns projects and teams and assigns tasks.
	RoleManager Role = "manager"
	// RoleTeamMember is assigned tasks and submits task updates.
	RoleTeamMember Role = "team_member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTeamMember
}

// User is a domain representation of an account.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	EmailDomain  string    `json:"email_domain" bson:"email_domain"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"password_hash" bson:"password_hash"`
	TeamID       string    `json:"team,omitempty" bson:"team,omitempty"`
	ManagerID    string    `json:"manager,omitempty" bson:"manager,omitempty"`
	Tasks        []string  `json:"tasks" bson:"tasks"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// DocID implements Document.
func (u User) DocID() string { return u.ID }

// Collection implements Document.
func (User) Collection() Collection { return CollectionUsers }

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after '@', or "" if the address has none.
func EmailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// DomainPolicy binds email domains to roles: allowlisted domains are managers, all others team members.
type DomainPolicy struct {
	managerDomains map[string]struct{}
}

// NewDomainPolicy builds a policy from the manager domain allowlist.
func NewDomainPolicy(managerDomains []string) DomainPolicy {
	set := make(map[string]struct{}, len(managerDomains))
	for _, d := range managerDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return DomainPolicy{managerDomains: set}
}

// RoleFor returns the only role allowed for the domain.
func (p DomainPolicy) RoleFor(domain string) Role {
	if _, ok := p.managerDomains[strings.ToLower(domain)]; ok {
		return RoleManager
	}
	return RoleTeamMember
}

// Allows reports whether role is consistent with domain.
func (p DomainPolicy) Allows(domain string, role Role) bool {
	return p.RoleFor(domain) == role
}

// Registration carries the fields of a new account.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// UserPatch carries optional profile changes.
type UserPatch struct {
	Name  *string
	Email *string
}
