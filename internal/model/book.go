package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is the central catalog entity.
type Book struct {
	ID              uint            `gorm:"primaryKey;column:book_id" json:"bookId"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	ISBN            string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"isbn"`
	PublicationDate Date            `gorm:"not null" json:"publicationDate"`
	PageCount       int             `gorm:"not null" json:"pageCount"`
	Language        string          `gorm:"type:varchar(50);not null" json:"language"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Thumbnail       string          `gorm:"type:varchar(2048);not null" json:"thumbnail"`
	URL             string          `gorm:"type:varchar(2048);not null" json:"url"`
	AuthorID        *uint           `json:"authorId,omitempty"`
	Author          *Author         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Genres          []Genre         `gorm:"many2many:books_genres;joinForeignKey:book_id;joinReferences:genre_id;" json:"genres,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
}

// Author writes books; a book has zero or one author.
type Author struct {
	ID          uint   `gorm:"primaryKey;column:author_id" json:"authorId"`
	FirstName   string `gorm:"type:varchar(255);not null" json:"firstName"`
	LastName    string `gorm:"type:varchar(255);not null" json:"lastName"`
	Email       string `gorm:"type:varchar(255)" json:"email,omitempty"`
	BirthDate   *Date  `json:"birthDate,omitempty"`
	Nationality string `gorm:"type:varchar(100)" json:"nationality,omitempty"`
}
