package repository

import (
	"context"
	"errors"
	"strings"

	"bookstore/internal/model"
	"bookstore/pkg/apperror"

	"gorm.io/gorm"
)

// UserRepository is the identity store: local users with their roles and
// permissions, addressable by id, email or IdP subject identifier.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint) error
	ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).Preload("Roles.Permissions").First(&user, "user_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).Preload("Roles.Permissions").
		Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (r *userRepository) FindBySubjectID(ctx context.Context, subjectID string) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).Preload("Roles.Permissions").
		Where("subject_id = ?", subjectID).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := db.Preload("Roles").Order("user_id asc").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Omit("Roles").Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Exec("DELETE FROM user_roles WHERE user_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&model.User{}, "user_id = ?", id).Error
}

func (r *userRepository) ReplaceRoles(ctx context.Context, user *model.User, roles []model.Role) error {
	return GetDB(ctx, r.db).Model(user).Association("Roles").Replace(roles)
}

// notFoundOr translates a record miss into the domain error and leaves
// everything else untouched.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s", message)
	}
	return err
}
