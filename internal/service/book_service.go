package service

import (
	"context"
	"regexp"
	"strings"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/internal/websocket"
	"bookstore/pkg/apperror"
	"bookstore/pkg/pagination"

	"github.com/shopspring/decimal"
)

var (
	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dXx]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{13}$`)
	// Deliberately conservative; this regex is the compatibility contract
	// for thumbnail and book URLs.
	urlPattern = regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
)

// BookService covers catalog CRUD, pagination, title search and the
// validation contract.
type BookService interface {
	List(ctx context.Context, p pagination.Params) ([]model.Book, int64, error)
	Get(ctx context.Context, id uint) (*model.Book, error)
	Search(ctx context.Context, query string) ([]model.Book, error)
	Create(ctx context.Context, req BookRequest) (*model.Book, error)
	Update(ctx context.Context, req BookRequest) (*model.Book, error)
	Delete(ctx context.Context, id uint) error
}

type bookService struct {
	books   repository.BookRepository
	genres  repository.GenreRepository
	authors repository.AuthorRepository
	tx      repository.TransactionManager
	hub     *websocket.Hub
}

func NewBookService(
	books repository.BookRepository,
	genres repository.GenreRepository,
	authors repository.AuthorRepository,
	tx repository.TransactionManager,
	hub *websocket.Hub,
) BookService {
	return &bookService{books: books, genres: genres, authors: authors, tx: tx, hub: hub}
}

func (s *bookService) List(ctx context.Context, p pagination.Params) ([]model.Book, int64, error) {
	return s.books.List(ctx, p.Offset, p.Limit)
}

func (s *bookService) Get(ctx context.Context, id uint) (*model.Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *bookService) Search(ctx context.Context, query string) ([]model.Book, error) {
	books, err := s.books.SearchByTitle(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, apperror.NotFound("No books found")
	}
	return books, nil
}

func (s *bookService) Create(ctx context.Context, req BookRequest) (*model.Book, error) {
	if err := validateBook(req); err != nil {
		return nil, err
	}

	var created *model.Book
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.books.FindByISBN(txCtx, req.ISBN); err == nil {
			return apperror.AlreadyExists("A book with this ISBN already exists")
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}

		book := &model.Book{
			Title:           req.Title,
			Description:     req.Description,
			ISBN:            req.ISBN,
			PublicationDate: *req.PublicationDate,
			PageCount:       *req.PageCount,
			Language:        req.Language,
			Price:           *req.Price,
			Thumbnail:       req.Thumbnail,
			URL:             req.URL,
		}

		if req.AuthorID != nil {
			author, err := s.authors.FindByID(txCtx, *req.AuthorID)
			if err != nil {
				return err
			}
			book.AuthorID = &author.ID
		}

		genres, err := s.resolveGenres(txCtx, req.Genres)
		if err != nil {
			return err
		}
		book.Genres = genres

		if err := s.books.Create(txCtx, book); err != nil {
			return err
		}
		created = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.PublishBook(websocket.EventBookCreated, created)
	}
	return created, nil
}

func (s *bookService) Update(ctx context.Context, req BookRequest) (*model.Book, error) {
	if req.BookID == 0 {
		return nil, apperror.Invalid("Book ID is required to update")
	}

	var updated *model.Book
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// Existence first: an unknown id is a 404 even when the payload
		// is also invalid.
		book, err := s.books.FindByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		if err := validateBook(req); err != nil {
			return err
		}

		if req.ISBN != book.ISBN {
			if _, err := s.books.FindByISBN(txCtx, req.ISBN); err == nil {
				return apperror.AlreadyExists("A book with this ISBN already exists")
			} else if !apperror.IsKind(err, apperror.KindNotFound) {
				return err
			}
		}

		applyBookRequest(book, req)

		if req.AuthorID != nil {
			author, err := s.authors.FindByID(txCtx, *req.AuthorID)
			if err != nil {
				return err
			}
			book.AuthorID = &author.ID
		}

		if err := s.books.Update(txCtx, book); err != nil {
			return err
		}

		if req.Genres != nil {
			genres, err := s.resolveGenres(txCtx, req.Genres)
			if err != nil {
				return err
			}
			if err := s.books.ReplaceGenres(txCtx, book, genres); err != nil {
				return err
			}
			book.Genres = genres
		}

		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.PublishBook(websocket.EventBookUpdated, updated)
	}
	return updated, nil
}

func (s *bookService) Delete(ctx context.Context, id uint) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.books.FindByID(txCtx, id); err != nil {
			return err
		}
		return s.books.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.PublishDeleted(id)
	}
	return nil
}

func (s *bookService) resolveGenres(ctx context.Context, names []string) ([]model.Genre, error) {
	if len(names) == 0 {
		return nil, nil
	}
	genres, err := s.genres.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(names) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Name] = true
		}
		for _, name := range names {
			if !found[name] {
				return nil, apperror.NotFound("Genre not found: %s", name)
			}
		}
	}
	return genres, nil
}

// applyBookRequest merges non-empty request fields onto the stored book.
// PageCount only overwrites when positive.
func applyBookRequest(book *model.Book, req BookRequest) {
	if req.Title != "" {
		book.Title = req.Title
	}
	if req.Description != "" {
		book.Description = req.Description
	}
	if req.ISBN != "" {
		book.ISBN = req.ISBN
	}
	if req.PublicationDate != nil {
		book.PublicationDate = *req.PublicationDate
	}
	if req.PageCount != nil && *req.PageCount > 0 {
		book.PageCount = *req.PageCount
	}
	if req.Language != "" {
		book.Language = req.Language
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Thumbnail != "" {
		book.Thumbnail = req.Thumbnail
	}
	if req.URL != "" {
		book.URL = req.URL
	}
}

// validateBook enforces the full input contract. Any violation returns
// an Invalid error with a field-specific message.
func validateBook(req BookRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperror.Invalid("Book title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperror.Invalid("Book description is required")
	}
	if strings.TrimSpace(req.ISBN) == "" {
		return apperror.Invalid("Book ISBN is required")
	}
	if !isValidISBN(req.ISBN) {
		return apperror.Invalid("Invalid ISBN format. Must be 10 or 13 digits")
	}
	if req.PublicationDate == nil || req.PublicationDate.IsZero() {
		return apperror.Invalid("Book publication date is required")
	}
	if req.PublicationDate.After(model.Today()) {
		return apperror.Invalid("Book publication date cannot be in the future")
	}
	if req.PageCount == nil || *req.PageCount <= 0 {
		return apperror.Invalid("Book page count must be greater than zero")
	}
	if strings.TrimSpace(req.Language) == "" {
		return apperror.Invalid("Book language is required")
	}
	if req.Price == nil || req.Price.LessThanOrEqual(decimal.Zero) {
		return apperror.Invalid("Book price must be greater than zero")
	}
	if strings.TrimSpace(req.Thumbnail) == "" || !urlPattern.MatchString(req.Thumbnail) {
		return apperror.Invalid("Invalid thumbnail URL")
	}
	if strings.TrimSpace(req.URL) == "" || !urlPattern.MatchString(req.URL) {
		return apperror.Invalid("Invalid book URL")
	}
	return nil
}

// isValidISBN accepts ISBN-10 (nine digits plus a digit or X) or ISBN-13
// (thirteen digits) after hyphen removal.
func isValidISBN(isbn string) bool {
	cleaned := strings.ReplaceAll(isbn, "-", "")
	switch len(cleaned) {
	case 10:
		return isbn10Pattern.MatchString(cleaned)
	case 13:
		return isbn13Pattern.MatchString(cleaned)
	default:
		return false
	}
}
