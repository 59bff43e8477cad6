package models

import (
	"encoding/json"
	"time"
)

// Capability names stored in Role.Permissions.
const (
	CapManageAll     = "can_manage_all"
	CapModerate      = "can_moderate"
	CapCreateContent = "can_create_content"
	CapViewContent   = "can_view_content"
	// Marks a role whose content goes live without passing moderation.
	CapPublishWithoutModeration = "can_publish_without_moderation"
)

// Role is the structured role entity: a named, centrally-owned set of
// capabilities serialized as JSON.
type Role struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Permissions string    `json:"permissions" gorm:"type:jsonb;default:'{}'"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Capabilities is the resolved permission set, independent of which role
// representation granted it.
type Capabilities map[string]bool

func (c Capabilities) Has(cap string) bool {
	return c[cap]
}

// CapabilitySet decodes the role's JSON permission map. A broken or empty
// payload yields no capabilities rather than an error.
func (r *Role) CapabilitySet() Capabilities {
	caps := Capabilities{}
	if r.Permissions == "" {
		return caps
	}
	var raw map[string]bool
	if err := json.Unmarshal([]byte(r.Permissions), &raw); err != nil {
		return caps
	}
	for name, on := range raw {
		if on {
			caps[name] = true
		}
	}
	return caps
}

// legacyCapabilities maps the flat role enum onto the capability model.
var legacyCapabilities = map[UserRole]Capabilities{
	RoleAdmin: {
		CapManageAll:     true,
		CapModerate:      true,
		CapCreateContent: true,
		CapViewContent:   true,
	},
	RoleModerator: {
		CapModerate:      true,
		CapCreateContent: true,
		CapViewContent:   true,
	},
	RolePublisher: {
		CapCreateContent: true,
		CapViewContent:   true,
	},
	RoleTeacher: {
		CapCreateContent: true,
		CapViewContent:   true,
	},
	RoleStudent: {
		CapViewContent: true,
	},
}

// ResolveCapabilities returns the effective capability set for a user.
// An active structured role takes precedence over the legacy enum; an
// unknown or missing role resolves to view-only.
func ResolveCapabilities(user *User) Capabilities {
	if user == nil {
		return Capabilities{CapViewContent: true}
	}
	if user.OrganizationalRole != nil && user.OrganizationalRole.IsActive {
		caps := user.OrganizationalRole.CapabilitySet()
		if len(caps) > 0 {
			return caps
		}
	}
	if caps, ok := legacyCapabilities[user.Role]; ok {
		out := Capabilities{}
		for name := range caps {
			out[name] = true
		}
		return out
	}
	return Capabilities{CapViewContent: true}
}
