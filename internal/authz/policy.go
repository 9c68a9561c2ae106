// Package authz holds the ownership rules for tasks. Read and write share
// one predicate so the two can never drift apart.
package authz

import (
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// CanAccess reports whether u may read or mutate t: admins may touch any
// task, everyone else only their own.
func CanAccess(u user.User, t task.Task) bool {
	return u.IsAdmin() || t.OwnerID == u.ID
}

// ListScope resolves the owner filter for a list request. Non-admins are
// always pinned to their own tasks no matter what they asked for; an admin
// asking for mine=false gets the unscoped view.
func ListScope(u user.User, mine bool) *string {
	if mine || !u.IsAdmin() {
		id := u.ID
		return &id
	}

	return nil
}
