package model

import (
	"slices"
	"time"
)

// Role defines what a member may do in a project
type Role string

const (
	RoleViewer Role = "viewer" // может только просматривать
	RoleEditor Role = "editor" // может редактировать
	RoleOwner  Role = "owner"
)

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}

// Allows reports whether r is at least required.
func (r Role) Allows(required Role) bool {
	return r.rank() >= required.rank() && r.rank() > 0
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.rank() > 0
}

type Member struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// Project owns its sections and tasks. MemberIDs mirrors Members so
// projects can be queried by member.
type Project struct {
	ID        string    `json:"-"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	Members   []Member  `json:"members"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewProject(id, name, ownerID string, now time.Time) Project {
	return Project{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Members:   []Member{{UserID: ownerID, Role: RoleOwner}},
		MemberIDs: []string{ownerID},
		CreatedAt: now,
	}
}

// RoleOf returns the role of userID, if any.
func (p *Project) RoleOf(userID string) (Role, bool) {
	if userID == p.OwnerID {
		return RoleOwner, true
	}
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// HasAccess checks that userID holds at least the required role.
func (p *Project) HasAccess(userID string, required Role) bool {
	role, ok := p.RoleOf(userID)
	return ok && role.Allows(required)
}

// SetMember adds userID or changes its role.
func (p *Project) SetMember(userID string, role Role) {
	for i, m := range p.Members {
		if m.UserID == userID {
			p.Members[i].Role = role
			return
		}
	}
	p.Members = append(p.Members, Member{UserID: userID, Role: role})
	if !slices.Contains(p.MemberIDs, userID) {
		p.MemberIDs = append(p.MemberIDs, userID)
	}
}
