package handler

import (
	"net/http"

	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/service"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireAuthority(model.RoleAdmin)

	roles := router.Group("/roles")
	roles.Use(admin)
	{
		roles.GET("", h.ListRoles)
		roles.GET("/:id", h.GetRole)
		roles.POST("", h.CreateRole)
		roles.PUT("/:id", h.UpdateRole)
		roles.DELETE("/:id", h.DeleteRole)
		roles.PUT("/:id/permissions/:permissionId", h.AttachPermission)
		roles.DELETE("/:id/permissions/:permissionId", h.DetachPermission)
	}

	perms := router.Group("/permissions")
	perms.Use(admin)
	{
		perms.GET("", h.ListPermissions)
		perms.POST("", h.CreatePermission)
	}
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	role, err := h.roleService.GetRole(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	role, err := h.roleService.CreateRole(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	role, err := h.roleService.UpdateRole(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.roleService.DeleteRole(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoleHandler) AttachPermission(c *gin.Context) {
	roleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	permID, ok := parseID(c, "permissionId")
	if !ok {
		return
	}
	role, err := h.roleService.AttachPermission(c.Request.Context(), roleID, permID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DetachPermission(c *gin.Context) {
	roleID, ok := parseID(c, "id")
	if !ok {
		return
	}
	permID, ok := parseID(c, "permissionId")
	if !ok {
		return
	}
	role, err := h.roleService.DetachPermission(c.Request.Context(), roleID, permID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.roleService.ListPermissions(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var req service.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	perm, err := h.roleService.CreatePermission(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, perm)
}
