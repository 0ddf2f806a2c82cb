package service

import (
	"context"
	"strings"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/pkg/apperror"
)

// GenreService exposes the enumerated genre set.
type GenreService interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, req GenreRequest) (*model.Genre, error)
}

type genreService struct {
	genres repository.GenreRepository
	tx     repository.TransactionManager
}

func NewGenreService(genres repository.GenreRepository, tx repository.TransactionManager) GenreService {
	return &genreService{genres: genres, tx: tx}
}

// List returns genre names only, matching the public catalog surface.
func (s *genreService) List(ctx context.Context) ([]string, error) {
	genres, err := s.genres.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names, nil
}

func (s *genreService) Add(ctx context.Context, req GenreRequest) (*model.Genre, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Invalid("Genre name is required")
	}

	var created *model.Genre
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.genres.FindByName(txCtx, name); err == nil {
			return apperror.AlreadyExists("Genre already exists")
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}
		genre := &model.Genre{Name: name}
		if err := s.genres.Create(txCtx, genre); err != nil {
			return err
		}
		created = genre
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
