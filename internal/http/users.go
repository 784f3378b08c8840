package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/auth"
	"accounts-service/internal/database/users"
	"accounts-service/internal/entities"
)

// UserController exposes CRUD over user records. Listing is admin-only;
// reads are open to any authenticated user; writes follow the self-or-admin
// rule enforced here via the gate helpers.
type UserController struct {
	repo *users.Repository
}

// NewUserController creates a new user management controller.
func NewUserController(repo *users.Repository) *UserController {
	return &UserController{repo: repo}
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// List returns all users ordered by creation time. Admin only.
func (uc *UserController) List(c *gin.Context) {
	all, err := uc.repo.List()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, all)
}

// Get returns a single user by id.
func (uc *UserController) Get(c *gin.Context) {
	user, err := uc.repo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update applies a partial update to a user record. Non-admins may only
// update themselves, and a role field they send is dropped rather than
// rejected. Admins may update anyone, role included.
func (uc *UserController) Update(c *gin.Context) {
	claims := auth.GetClaims(c)
	targetID := c.Param("id")

	if !auth.CanModify(claims, targetID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Username == nil && req.Email == nil && req.Password == nil && req.Role == nil {
		respondError(c, auth.ErrEmptyUpdate, "update user")
		return
	}

	fields := users.UpdateFields{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Username != nil {
		if err := auth.ValidateUsername(*req.Username); err != nil {
			respondError(c, err, "update user")
			return
		}
	}
	if req.Email != nil {
		if err := auth.ValidateEmail(*req.Email); err != nil {
			respondError(c, err, "update user")
			return
		}
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			respondError(c, err, "update user")
			return
		}
	}
	// Only admins can change roles; for everyone else the field is ignored.
	if req.Role != nil && claims.Role == entities.UserRoleAdmin {
		role := entities.UserRole(*req.Role)
		if !entities.ValidRole(role) {
			respondError(c, auth.ErrInvalidRole, "update user")
			return
		}
		fields.Role = &role
	}

	user, err := uc.repo.Update(targetID, fields)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	log.Printf("User updated: %s", user.ID)
	c.JSON(http.StatusOK, SuccessResponse{Message: "User updated successfully", Data: user})
}

// Delete removes a user record. Self-or-admin.
func (uc *UserController) Delete(c *gin.Context) {
	claims := auth.GetClaims(c)
	targetID := c.Param("id")

	if !auth.CanModify(claims, targetID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
		return
	}

	if err := uc.repo.Delete(targetID); err != nil {
		respondError(c, err, "delete user")
		return
	}

	log.Printf("User deleted: %s", targetID)
	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted successfully"})
}
