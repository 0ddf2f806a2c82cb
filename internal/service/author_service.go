package service

import (
	"context"
	"regexp"
	"strings"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/pkg/apperror"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthorService manages book authors.
type AuthorService interface {
	Add(ctx context.Context, req AuthorRequest) (*model.Author, error)
	Get(ctx context.Context, id uint) (*model.Author, error)
}

type authorService struct {
	authors repository.AuthorRepository
	tx      repository.TransactionManager
}

func NewAuthorService(authors repository.AuthorRepository, tx repository.TransactionManager) AuthorService {
	return &authorService{authors: authors, tx: tx}
}

func (s *authorService) Add(ctx context.Context, req AuthorRequest) (*model.Author, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, apperror.Invalid("Author name is required")
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return nil, apperror.Invalid("Invalid author email")
	}

	author := &model.Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.authors.Create(txCtx, author)
	})
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (s *authorService) Get(ctx context.Context, id uint) (*model.Author, error) {
	return s.authors.FindByID(ctx, id)
}
