package repository

import (
	"context"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

// GenreRepository reads and extends the enumerated genre set.
type GenreRepository interface {
	Create(ctx context.Context, genre *model.Genre) error
	FindByName(ctx context.Context, name string) (*model.Genre, error)
	FindByNames(ctx context.Context, names []string) ([]model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *model.Genre) error {
	return GetDB(ctx, r.db).Create(genre).Error
}

func (r *genreRepository) FindByName(ctx context.Context, name string) (*model.Genre, error) {
	var genre model.Genre
	err := GetDB(ctx, r.db).Where("name = ?", name).First(&genre).Error
	if err != nil {
		return nil, notFoundOr(err, "Genre not found")
	}
	return &genre, nil
}

func (r *genreRepository) FindByNames(ctx context.Context, names []string) ([]model.Genre, error) {
	var genres []model.Genre
	err := GetDB(ctx, r.db).Where("name IN ?", names).Find(&genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) List(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	err := GetDB(ctx, r.db).Order("name asc").Find(&genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}
