package repository

import (
	"context"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

// BookRepository persists and queries catalog books.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context, offset, limit int) ([]model.Book, int64, error)
	SearchByTitle(ctx context.Context, query string) ([]model.Book, error)
	Update(ctx context.Context, book *model.Book) error
	ReplaceGenres(ctx context.Context, book *model.Book, genres []model.Genre) error
	Delete(ctx context.Context, id uint) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return GetDB(ctx, r.db).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := GetDB(ctx, r.db).Preload("Author").Preload("Genres").
		First(&book, "book_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Book not found")
	}
	return &book, nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var book model.Book
	err := GetDB(ctx, r.db).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, notFoundOr(err, "Book not found")
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, offset, limit int) ([]model.Book, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []model.Book
	err := db.Preload("Author").Preload("Genres").
		Order("book_id asc").Offset(offset).Limit(limit).Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) SearchByTitle(ctx context.Context, query string) ([]model.Book, error) {
	var books []model.Book
	err := GetDB(ctx, r.db).Preload("Author").Preload("Genres").
		Where("title ILIKE ?", "%"+query+"%").
		Order("book_id asc").Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *model.Book) error {
	return GetDB(ctx, r.db).Omit("Genres", "Author").Save(book).Error
}

func (r *bookRepository) ReplaceGenres(ctx context.Context, book *model.Book, genres []model.Genre) error {
	return GetDB(ctx, r.db).Model(book).Association("Genres").Replace(genres)
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Exec("DELETE FROM books_genres WHERE book_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&model.Book{}, "book_id = ?", id).Error
}
