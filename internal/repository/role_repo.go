package repository

import (
	"context"

	"bookstore/internal/model"

	"gorm.io/gorm"
)

// RoleRepository covers roles and the permission catalog behind them.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	CountUsersWithRole(ctx context.Context, id uint) (int64, error)

	CreatePermission(ctx context.Context, perm *model.Permission) error
	FindPermissionByID(ctx context.Context, id uint) (*model.Permission, error)
	FindPermissionByName(ctx context.Context, name string) (*model.Permission, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	AttachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error
	DetachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Omit("Permissions").Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&model.Role{}, "role_id = ?", id).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "role_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Role not found")
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := GetDB(ctx, r.db).Preload("Permissions").Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, notFoundOr(err, "Role not found")
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).Preload("Permissions").Order("role_id asc").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CountUsersWithRole(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Table("user_roles").Where("role_id = ?", id).Count(&count).Error
	return count, err
}

func (r *roleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *roleRepository) FindPermissionByID(ctx context.Context, id uint) (*model.Permission, error) {
	var perm model.Permission
	err := GetDB(ctx, r.db).First(&perm, "permission_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "Permission not found")
	}
	return &perm, nil
}

func (r *roleRepository) FindPermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	var perm model.Permission
	err := GetDB(ctx, r.db).Where("name = ?", name).First(&perm).Error
	if err != nil {
		return nil, notFoundOr(err, "Permission not found")
	}
	return &perm, nil
}

func (r *roleRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	err := GetDB(ctx, r.db).Order("permission_id asc").Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) AttachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error {
	return GetDB(ctx, r.db).Model(role).Association("Permissions").Append(perm)
}

func (r *roleRepository) DetachPermission(ctx context.Context, role *model.Role, perm *model.Permission) error {
	return GetDB(ctx, r.db).Model(role).Association("Permissions").Delete(perm)
}
