package handler

import (
	"net/http"

	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/service"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	authorService service.AuthorService
}

func NewAuthorHandler(authorService service.AuthorService) *AuthorHandler {
	return &AuthorHandler{authorService: authorService}
}

func (h *AuthorHandler) RegisterRoutes(router *gin.RouterGroup) {
	authors := router.Group("/authors")
	{
		authors.GET("/:id", h.GetAuthor)
		authors.POST("/add-author", middleware.RequireAuthority(model.RoleAdmin, model.RolePublisher), h.AddAuthor)
	}
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	author, err := h.authorService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) AddAuthor(c *gin.Context) {
	var req service.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	author, err := h.authorService.Add(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}
