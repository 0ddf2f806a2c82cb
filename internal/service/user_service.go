package service

import (
	"context"

	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/pkg/apperror"
	"bookstore/pkg/pagination"

	"golang.org/x/crypto/bcrypt"
)

// UserService manages local profiles, activation state and role
// membership.
type UserService interface {
	Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Get(ctx context.Context, id uint) (*UserResponse, error)
	GetByEmail(ctx context.Context, email string) (*UserResponse, error)
	List(ctx context.Context, p pagination.Params) ([]UserResponse, int64, error)
	SetActive(ctx context.Context, id uint, active bool) (*UserResponse, error)
	AttachRole(ctx context.Context, userID, roleID uint) (*UserResponse, error)
	DetachRole(ctx context.Context, userID, roleID uint) (*UserResponse, error)
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	tx    repository.TransactionManager
}

func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tx repository.TransactionManager,
) UserService {
	return &userService{users: users, roles: roles, tx: tx}
}

// Create adds a local-only user (admin path; no IdP record is created).
func (s *userService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	var created *model.User
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.FindByEmail(txCtx, req.Email); err == nil {
			return apperror.AlreadyExists("Email already exists")
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}

		roles, err := s.resolveRoles(txCtx, req.Roles)
		if err != nil {
			return err
		}

		user := &model.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			DateOfBirth:  *req.DateOfBirth,
			IsActive:     true,
			Roles:        roles,
		}
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := toUserResponse(created)
	return &res, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) List(ctx context.Context, p pagination.Params) ([]UserResponse, int64, error) {
	users, total, err := s.users.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, total, nil
}

// SetActive flips the activation flag. Deactivated users keep their
// profile and roles but fail authorization on every request.
func (s *userService) SetActive(ctx context.Context, id uint, active bool) (*UserResponse, error) {
	var updated *model.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		user.IsActive = active
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := toUserResponse(updated)
	return &res, nil
}

func (s *userService) AttachRole(ctx context.Context, userID, roleID uint) (*UserResponse, error) {
	var updated *model.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		role, err := s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}

		if user.HasRole(role.Name) {
			updated = user
			return nil
		}

		roles := append(user.Roles, *role)
		if err := s.users.ReplaceRoles(txCtx, user, roles); err != nil {
			return err
		}
		user.Roles = roles
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := toUserResponse(updated)
	return &res, nil
}

// DetachRole removes a role from a user. Removing the last role is
// forbidden: every user must keep at least one.
func (s *userService) DetachRole(ctx context.Context, userID, roleID uint) (*UserResponse, error) {
	var updated *model.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		role, err := s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}

		if !user.HasRole(role.Name) {
			return apperror.NotFound("User does not have role %s", role.Name)
		}
		if len(user.Roles) <= 1 {
			return apperror.Forbidden("Cannot remove the last role from a user")
		}

		remaining := make([]model.Role, 0, len(user.Roles)-1)
		for _, r := range user.Roles {
			if r.ID != role.ID {
				remaining = append(remaining, r)
			}
		}
		if err := s.users.ReplaceRoles(txCtx, user, remaining); err != nil {
			return err
		}
		user.Roles = remaining
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := toUserResponse(updated)
	return &res, nil
}

func (s *userService) resolveRoles(ctx context.Context, refs []RoleRef) ([]model.Role, error) {
	if len(refs) == 0 {
		reader, err := s.roles.FindByName(ctx, model.RoleReader)
		if err != nil {
			return nil, err
		}
		return []model.Role{*reader}, nil
	}
	roles := make([]model.Role, 0, len(refs))
	for _, ref := range refs {
		role, err := s.roles.FindByName(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
