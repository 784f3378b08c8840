package auth

import (
	"errors"

	"accounts-service/internal/entities"
)

// ErrForbidden means the caller is authenticated but not permitted.
var ErrForbidden = errors.New("insufficient permissions")

// Authorize reports whether the presented role satisfies the required set.
// An empty required set admits any authenticated principal; presence of
// authentication itself is checked upstream by token verification.
func Authorize(required []entities.UserRole, presented entities.UserRole) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if role == presented {
			return true
		}
	}
	return false
}

// CanModify implements the self-or-admin rule for mutating operations on a
// user record: the acting principal must be the target user or an admin.
func CanModify(acting *Claims, targetID string) bool {
	if acting == nil {
		return false
	}
	return acting.UserID == targetID || acting.Role == entities.UserRoleAdmin
}
