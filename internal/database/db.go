package database

import (
	"bookstore/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and
// migrates the catalog schema.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.Permission{},
		&model.Role{},
		&model.User{},
		&model.Author{},
		&model.Genre{},
		&model.Book{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
