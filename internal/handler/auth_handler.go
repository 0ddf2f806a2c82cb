package handler

import (
	"net/http"

	"bookstore/internal/service"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/refresh", h.Refresh)
	}
}

// Login handles POST /auth/login
// @Summary      Login
// @Description  Verifies credentials locally, performs the IdP password grant and returns the token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  service.AuthResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Register handles POST /auth/register
// @Summary      Register
// @Description  Creates the IdP credential record and the local profile; defaults to the READER role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Profile and password"
// @Success      201      {object}  service.UserResponse
// @Failure      400      {object}  response.ErrorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh tokens
// @Description  Rotates the token pair at the IdP and returns the matching user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  service.AuthResponse
// @Failure      400      {object}  response.ErrorBody
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
