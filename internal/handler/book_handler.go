package handler

import (
	"net/http"
	"strconv"

	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/service"
	"bookstore/pkg/pagination"
	"bookstore/pkg/response"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// RegisterRoutes binds the catalog endpoints. Reads are public; writes
// need the ADMIN or PUBLISHER role.
func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	books := router.Group("/books")
	{
		books.GET("/all", h.ListBooks)
		books.GET("/search", h.SearchBooks)
		books.GET("/:id", h.GetBook)

		write := middleware.RequireAuthority(model.RoleAdmin, model.RolePublisher)
		books.POST("/add-book", write, h.AddBook)
		books.PUT("/update-book", write, h.UpdateBook)
		books.DELETE("/delete-book/:id", write, h.DeleteBook)
	}
}

// ListBooks handles GET /books/all
// @Summary      List books
// @Description  Retrieves a paginated list of books ordered by id
// @Tags         books
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  pagination.Page
// @Router       /books/all [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	p := pagination.Parse(c)
	books, total, err := h.bookService.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Envelope(books, total, p))
}

// SearchBooks handles GET /books/search?q=
// @Summary      Search books by title
// @Description  Case-insensitive substring match on title; 404 when nothing matches
// @Tags         books
// @Produce      json
// @Param        q    query     string  true  "Title fragment"
// @Success      200  {array}   model.Book
// @Failure      404  {object}  response.ErrorBody
// @Router       /books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	books, err := h.bookService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook handles GET /books/:id
// @Summary      Get book by ID
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  response.ErrorBody
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	book, err := h.bookService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// AddBook handles POST /books/add-book
// @Summary      Add a book
// @Description  Creates a book after running the full validation contract
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BookRequest  true  "Book payload"
// @Success      201      {object}  model.Book
// @Failure      400      {object}  response.ErrorBody
// @Router       /books/add-book [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// UpdateBook handles PUT /books/update-book
// @Summary      Update a book
// @Description  Applies non-null fields of the payload to the stored book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BookRequest  true  "Book payload with bookId"
// @Success      200      {object}  model.Book
// @Failure      400      {object}  response.ErrorBody
// @Router       /books/update-book [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /books/delete-book/:id
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book ID"
// @Success      204  "deleted"
// @Failure      404  {object}  response.ErrorBody
// @Router       /books/delete-book/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.bookService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID reads a numeric path parameter, writing a 400 on failure.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid "+param+" parameter")
		return 0, false
	}
	return uint(id), true
}
