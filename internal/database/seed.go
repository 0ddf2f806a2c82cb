package database

import (
	"log"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

// Seed populates the closed permission, role and genre sets on first
// boot. Every insert is existence-checked so repeated boots are no-ops.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedPermissions(tx); err != nil {
			return err
		}
		if err := seedRoles(tx); err != nil {
			return err
		}
		return seedGenres(tx)
	})
}

func seedPermissions(tx *gorm.DB) error {
	names := []string{model.PermRead, model.PermWrite, model.PermDelete, model.PermAdmin}
	for _, name := range names {
		var count int64
		if err := tx.Model(&model.Permission{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&model.Permission{Name: name}).Error; err != nil {
				return err
			}
			log.Printf("seeded permission %s", name)
		}
	}
	return nil
}

func seedRoles(tx *gorm.DB) error {
	grants := map[string][]string{
		model.RoleAdmin:     {model.PermRead, model.PermWrite, model.PermDelete, model.PermAdmin},
		model.RolePublisher: {model.PermRead, model.PermWrite},
		model.RoleReader:    {model.PermRead},
	}
	// Deterministic order keeps role ids stable on a fresh database.
	for _, name := range []string{model.RoleAdmin, model.RolePublisher, model.RoleReader} {
		var count int64
		if err := tx.Model(&model.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var perms []model.Permission
		if err := tx.Where("name IN ?", grants[name]).Find(&perms).Error; err != nil {
			return err
		}
		role := model.Role{Name: name, Permissions: perms}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		log.Printf("seeded role %s with %d permissions", name, len(perms))
	}
	return nil
}

func seedGenres(tx *gorm.DB) error {
	for _, name := range model.SeededGenres {
		var count int64
		if err := tx.Model(&model.Genre{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&model.Genre{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
