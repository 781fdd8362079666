// Package policy is the single place role decisions are made.
package policy

import (
	"github.com/portfolio-blog-api/internal/models"
)

// Action is something an actor may attempt
type Action string

const (
	ActionCreateBlog       Action = "blog:create"
	ActionEditBlog         Action = "blog:edit"
	ActionDeleteBlog       Action = "blog:delete"
	ActionApproveBlog      Action = "blog:approve"
	ActionPublishBlog      Action = "blog:publish"
	ActionViewAllBlogs     Action = "blog:view_all"
	ActionManageCategories Action = "category:manage"
	ActionManageSlang      Action = "slang:manage"
	ActionManageUsers      Action = "user:manage"
	ActionChangeRoles      Action = "user:change_role"
	ActionManagePrompts    Action = "prompt:manage"
	ActionGenerate         Action = "ai:generate"
	ActionViewJob          Action = "ai:view_job"
	ActionUpload           Action = "upload"
	ActionDeleteUpload     Action = "upload:delete"
	ActionExport           Action = "export"
)

// Actor is the identity taken from a verified session token
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// IsAuthenticated reports whether the actor carries a known identity and role
func (a Actor) IsAuthenticated() bool {
	return a.ID != "" && models.ValidRoles[a.Role]
}

// IsAdmin reports whether the actor is ADMIN or SUPER_ADMIN
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Role.IsAdmin()
}

// Can decides whether actor may perform action on a resource owned by ownerID.
// ownerID is empty for actions without an owned resource.
func Can(actor Actor, action Action, ownerID string) bool {
	if !actor.IsAuthenticated() {
		return false
	}

	switch action {
	case ActionCreateBlog, ActionGenerate, ActionUpload:
		return true
	case ActionEditBlog, ActionDeleteBlog, ActionViewJob, ActionDeleteUpload:
		return actor.Role.IsAdmin() || (ownerID != "" && ownerID == actor.ID)
	case ActionApproveBlog, ActionPublishBlog, ActionViewAllBlogs, ActionManageCategories,
		ActionManageSlang, ActionManageUsers, ActionManagePrompts, ActionExport:
		return actor.Role.IsAdmin()
	case ActionChangeRoles:
		return actor.Role == models.RoleSuperAdmin
	default:
		return false
	}
}

// CanDeleteUser forbids deleting a SUPER_ADMIN or oneself
func CanDeleteUser(actor Actor, target *models.User) bool {
	if target == nil || !Can(actor, ActionManageUsers, "") {
		return false
	}
	return target.Role != models.RoleSuperAdmin && target.ID != actor.ID
}

// CanChangeRole lets a SUPER_ADMIN change anyone's role but their own
func CanChangeRole(actor Actor, target *models.User) bool {
	if target == nil || !Can(actor, ActionChangeRoles, "") {
		return false
	}
	return target.ID != actor.ID
}
