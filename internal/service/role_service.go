package service

import (
	"context"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/pkg/apperror"
)

// RoleService is the admin surface over roles and permissions.
type RoleService interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*model.Role, error)
	UpdateRole(ctx context.Context, id uint, req CreateRoleRequest) (*model.Role, error)
	DeleteRole(ctx context.Context, id uint) error
	AttachPermission(ctx context.Context, roleID, permissionID uint) (*model.Role, error)
	DetachPermission(ctx context.Context, roleID, permissionID uint) (*model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*model.Permission, error)
}

type roleService struct {
	roles repository.RoleRepository
	tx    repository.TransactionManager
}

func NewRoleService(roles repository.RoleRepository, tx repository.TransactionManager) RoleService {
	return &roleService{roles: roles, tx: tx}
}

func (s *roleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*model.Role, error) {
	var created *model.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.FindByName(txCtx, req.Name); err == nil {
			return apperror.AlreadyExists("Role name already exists")
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}
		role := &model.Role{Name: req.Name}
		if err := s.roles.Create(txCtx, role); err != nil {
			return err
		}
		created = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, req CreateRoleRequest) (*model.Role, error) {
	var updated *model.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if req.Name != role.Name {
			if _, err := s.roles.FindByName(txCtx, req.Name); err == nil {
				return apperror.AlreadyExists("Role name already exists")
			} else if !apperror.IsKind(err, apperror.KindNotFound) {
				return err
			}
			role.Name = req.Name
		}
		if err := s.roles.Update(txCtx, role); err != nil {
			return err
		}
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRole refuses while users still carry the role; detach them
// first.
func (s *roleService) DeleteRole(ctx context.Context, id uint) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.FindByID(txCtx, id); err != nil {
			return err
		}
		count, err := s.roles.CountUsersWithRole(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.Forbidden("Role is still assigned to %d user(s)", count)
		}
		return s.roles.Delete(txCtx, id)
	})
}

func (s *roleService) AttachPermission(ctx context.Context, roleID, permissionID uint) (*model.Role, error) {
	var updated *model.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}
		perm, err := s.roles.FindPermissionByID(txCtx, permissionID)
		if err != nil {
			return err
		}
		for _, p := range role.Permissions {
			if p.ID == perm.ID {
				updated = role
				return nil
			}
		}
		if err := s.roles.AttachPermission(txCtx, role, perm); err != nil {
			return err
		}
		role.Permissions = append(role.Permissions, *perm)
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *roleService) DetachPermission(ctx context.Context, roleID, permissionID uint) (*model.Role, error) {
	var updated *model.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}
		perm, err := s.roles.FindPermissionByID(txCtx, permissionID)
		if err != nil {
			return err
		}
		attached := false
		for _, p := range role.Permissions {
			if p.ID == perm.ID {
				attached = true
				break
			}
		}
		if !attached {
			return apperror.NotFound("Role does not have permission %s", perm.Name)
		}
		if err := s.roles.DetachPermission(txCtx, role, perm); err != nil {
			return err
		}
		remaining := make([]model.Permission, 0, len(role.Permissions)-1)
		for _, p := range role.Permissions {
			if p.ID != perm.ID {
				remaining = append(remaining, p)
			}
		}
		role.Permissions = remaining
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return s.roles.ListPermissions(ctx)
}

func (s *roleService) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*model.Permission, error) {
	var created *model.Permission
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.FindPermissionByName(txCtx, req.Name); err == nil {
			return apperror.AlreadyExists("Permission name already exists")
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}
		perm := &model.Permission{Name: req.Name}
		if err := s.roles.CreatePermission(txCtx, perm); err != nil {
			return err
		}
		created = perm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
