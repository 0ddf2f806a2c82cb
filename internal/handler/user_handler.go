package handler

import (
	"net/http"

	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/service"
	"bookstore/pkg/pagination"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	authService service.AuthService
}

func NewUserHandler(userService service.UserService, authService service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// RegisterRoutes binds the user endpoints. Reads of a specific user are
// allowed for admins or the user themselves; everything else is
// admin-only. Profile update and delete mirror to the IdP.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireAuthority(model.RoleAdmin)
	selfOrAdmin := middleware.RequireSelfOrAuthority("id", model.RoleAdmin)

	users := router.Group("/users")
	{
		users.GET("", admin, h.ListUsers)
		users.POST("", admin, h.CreateUser)
		users.GET("/email/:email", admin, h.GetUserByEmail)
		users.PUT("/update-user", middleware.RequireAuthenticated(), h.UpdateUser)
		users.GET("/:id", selfOrAdmin, h.GetUser)
		users.DELETE("/:id", selfOrAdmin, h.DeleteUser)
		users.PUT("/:id/activate", admin, h.ActivateUser)
		users.PUT("/:id/deactivate", admin, h.DeactivateUser)
		users.PUT("/:id/roles/:roleId", admin, h.AttachRole)
		users.DELETE("/:id/roles/:roleId", admin, h.DetachRole)
	}
}

// ListUsers handles GET /users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  pagination.Page
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	users, total, err := h.userService.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(users, total, p))
}

// CreateUser handles POST /users (admin, local-only record)
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "User payload"
// @Success      201      {object}  service.UserResponse
// @Failure      400      {object}  response.ErrorBody
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByEmail handles GET /users/email/:email
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/update-user. The target id comes from
// the body; only admins may update someone else's profile. Changes are
// mirrored to the IdP best-effort.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	if !principal.HasAny(model.RoleAdmin) && principal.UserID != req.UserID {
		response.Error(c, http.StatusForbidden, "Access denied: insufficient permissions")
		return
	}

	user, err := h.authService.UpdateAuthUser(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id, mirroring to the IdP.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.authService.DeleteAuthUser(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActivateUser handles PUT /users/:id/activate
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateUser handles PUT /users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.SetActive(c.Request.Context(), id, active)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AttachRole handles PUT /users/:id/roles/:roleId
func (h *UserHandler) AttachRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseID(c, "roleId")
	if !ok {
		return
	}
	user, err := h.userService.AttachRole(c.Request.Context(), userID, roleID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DetachRole handles DELETE /users/:id/roles/:roleId. Removing the last
// role is refused with 403.
func (h *UserHandler) DetachRole(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseID(c, "roleId")
	if !ok {
		return
	}
	user, err := h.userService.DetachRole(c.Request.Context(), userID, roleID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
