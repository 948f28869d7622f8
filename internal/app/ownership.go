package app

import "todo-api/internal/model"

// Authorize reports whether identity owns the resource with the given owner id.
// Every ownership decision in this package goes through here. Accounts turn a
// false into ErrPermissionDenied, todos into ErrTodoNotFound.
func Authorize(identity *model.User, ownerID uint) bool {
	return identity != nil && identity.ID != 0 && identity.ID == ownerID
}
