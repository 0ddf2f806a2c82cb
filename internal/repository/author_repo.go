package repository

import (
	"context"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

// AuthorRepository persists book authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	FindByID(ctx context.Context, id uint) (*model.Author, error)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *model.Author) error {
	return GetDB(ctx, r.db).Create(author).Error
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*model.Author, error) {
	var author model.Author
	err := GetDB(ctx, r.db).First(&author, "author_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Author not found")
	}
	return &author, nil
}
