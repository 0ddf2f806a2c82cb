package handler

import (
	"net/http"

	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/service"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

func (h *GenreHandler) RegisterRoutes(router *gin.RouterGroup) {
	genres := router.Group("/genres")
	{
		genres.GET("", h.ListGenres)
		genres.POST("", middleware.RequireAuthority(model.RoleAdmin), h.AddGenre)
	}
}

// ListGenres returns genre names only.
func (h *GenreHandler) ListGenres(c *gin.Context) {
	names, err := h.genreService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (h *GenreHandler) AddGenre(c *gin.Context) {
	var req service.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	genre, err := h.genreService.Add(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}
