package policy

import "github.com/crmbase-app/crmbase-backend/pkg/db/models"

// Capabilities is the single authorization surface for the application.
// Privilege is an explicit per-role flag pair, never inferred from role
// absence or a role's name.
type Capabilities struct {
	Moderator bool
	Admin     bool
}

// FromRole derives capabilities from a user's role. A missing role grants
// nothing.
func FromRole(role *models.Role) Capabilities {
	if role == nil {
		return Capabilities{}
	}
	return Capabilities{
		Moderator: role.IsModerator,
		Admin:     role.IsAdmin,
	}
}

// Elevated reports whether the actor holds moderator or admin rights.
func (c Capabilities) Elevated() bool {
	return c.Moderator || c.Admin
}

// CanAdministerUsers gates the user listing and batch edit surfaces.
func (c Capabilities) CanAdministerUsers() bool {
	return c.Elevated()
}

// CanAccessUser reports whether the actor may view or edit the target
// account. Plain users only ever reach their own.
func (c Capabilities) CanAccessUser(actorID, targetID int64) bool {
	return actorID == targetID || c.Elevated()
}

// CanAssignRoles gates role changes on user edits.
func (c Capabilities) CanAssignRoles() bool {
	return c.Admin
}

// CanDeleteRecord gates soft deletion of CRM records. Deletion requires
// ownership or elevated rights; a record with no surviving owner falls to
// elevated users only.
func (c Capabilities) CanDeleteRecord(actorID int64, ownerID *int64) bool {
	if c.Elevated() {
		return true
	}
	return ownerID != nil && *ownerID == actorID
}
