package service

import (
	"context"
	"log"

	"bookstore/internal/auth"
	"bookstore/internal/model"
	"bookstore/internal/repository"
	"bookstore/internal/supabase"
	"bookstore/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

// AuthService brokers authentication against the identity provider and
// keeps the local profile mirrored with it.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	UpdateAuthUser(ctx context.Context, req UpdateUserRequest) (*UserResponse, error)
	DeleteAuthUser(ctx context.Context, id uint) error
}

type authService struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	idp       *supabase.Client
	validator *auth.TokenValidator
	tx        repository.TransactionManager
}

func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	idp *supabase.Client,
	validator *auth.TokenValidator,
	tx repository.TransactionManager,
) AuthService {
	return &authService{users: users, roles: roles, idp: idp, validator: validator, tx: tx}
}

// Login verifies the password locally before delegating the grant to the
// IdP, then validates the returned token against the shared secret.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Invalid("Invalid credentials")
	}

	grant, err := s.idp.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.validator.Validate(grant.AccessToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:        grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         toUserResponse(user),
	}, nil
}

// Register creates the credential record at the IdP first, then the
// local profile. A local failure after a successful signup leaves an
// orphaned IdP record; that window is accepted and logged.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.AlreadyExists("Email already exists")
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	signup, err := s.idp.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	subjectID := signup.User.ID

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	var created *model.User
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		roles, err := s.resolveRoles(txCtx, req.Roles)
		if err != nil {
			return err
		}

		user := &model.User{
			SubjectID:    &subjectID,
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
		log.Printf("registration: IdP signup for %s succeeded but local insert failed: %v", req.Email, err)
		return nil, err
	}

	res := toUserResponse(created)
	return &res, nil
}

// Refresh rotates the token pair at the IdP and resolves the local user
// from the new access token's subject.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	grant, err := s.idp.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	subject, err := s.validator.Subject(grant.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindBySubjectID(ctx, subject)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:        grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         toUserResponse(user),
	}, nil
}

// UpdateAuthUser applies the local mutation inside a transaction, then
// mirrors email/password changes to the IdP best-effort. A mirror
// failure is logged and does not roll back the local change.
func (s *authService) UpdateAuthUser(ctx context.Context, req UpdateUserRequest) (*UserResponse, error) {
	if req.UserID == 0 {
		return nil, apperror.Invalid("User ID is required to update")
	}

	var updated *model.User
	idpAttrs := map[string]interface{}{}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, req.UserID)
		if err != nil {
			return err
		}

		if req.Email != nil && *req.Email != user.Email {
			if _, err := s.users.FindByEmail(txCtx, *req.Email); err == nil {
				return apperror.AlreadyExists("Email already exists")
			} else if !apperror.IsKind(err, apperror.KindNotFound) {
				return err
			}
			user.Email = *req.Email
			idpAttrs["email"] = *req.Email
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return apperror.Internal(err, "failed to hash password")
			}
			user.PasswordHash = string(hash)
			idpAttrs["password"] = *req.Password
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.DateOfBirth != nil {
			user.DateOfBirth = *req.DateOfBirth
		}

		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(idpAttrs) > 0 && updated.SubjectID != nil {
		if err := s.idp.AdminUpdateUser(ctx, *updated.SubjectID, idpAttrs); err != nil {
			log.Printf("failed to mirror update for user %d to IdP: %v", updated.ID, err)
		}
	}

	res := toUserResponse(updated)
	return &res, nil
}

// DeleteAuthUser removes the local user, then the IdP record
// best-effort.
func (s *authService) DeleteAuthUser(ctx context.Context, id uint) error {
	var subjectID *string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		subjectID = user.SubjectID
		return s.users.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if subjectID != nil {
		if err := s.idp.AdminDeleteUser(ctx, *subjectID); err != nil {
			log.Printf("failed to mirror delete for user %d to IdP: %v", id, err)
		}
	}
	return nil
}

// resolveRoles maps requested role names to entities, defaulting to
// READER when none are supplied.
func (s *authService) resolveRoles(ctx context.Context, refs []RoleRef) ([]model.Role, error) {
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
