package service

import (
	"bookstore/internal/model"

	"github.com/shopspring/decimal"
)

// RoleRef names a role in requests and responses.
type RoleRef struct {
	RoleID uint   `json:"roleId,omitempty"`
	Name   string `json:"name"`
}

// UserResponse is the sanitized user profile. Password is always null on
// the wire; the field exists so clients can rely on its presence.
type UserResponse struct {
	UserID      uint       `json:"userId"`
	SubjectID   string     `json:"subjectId,omitempty"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth model.Date `json:"dateOfBirth"`
	IsActive    bool       `json:"isActive"`
	Roles       []RoleRef  `json:"roles"`
	Password    *string    `json:"password"`
}

// LoginRequest carries the password-grant credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=6"`
	FirstName   string      `json:"firstName" binding:"required"`
	LastName    string      `json:"lastName" binding:"required"`
	DateOfBirth *model.Date `json:"dateOfBirth" binding:"required"`
	Roles       []RoleRef   `json:"roles"`
}

// RefreshRequest rotates a token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

// CreateUserRequest is the admin-side user creation payload.
type CreateUserRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=6"`
	FirstName   string      `json:"firstName" binding:"required"`
	LastName    string      `json:"lastName" binding:"required"`
	DateOfBirth *model.Date `json:"dateOfBirth" binding:"required"`
	Roles       []RoleRef   `json:"roles"`
}

// UpdateUserRequest mutates a profile; nil fields are left untouched.
type UpdateUserRequest struct {
	UserID      uint        `json:"userId"`
	Email       *string     `json:"email" binding:"omitempty,email"`
	Password    *string     `json:"password"`
	FirstName   *string     `json:"firstName"`
	LastName    *string     `json:"lastName"`
	DateOfBirth *model.Date `json:"dateOfBirth"`
}

// BookRequest is the create/update payload for a catalog book. Pointer
// fields distinguish "absent" from zero values.
type BookRequest struct {
	BookID          uint             `json:"bookId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ISBN            string           `json:"isbn"`
	PublicationDate *model.Date      `json:"publicationDate"`
	PageCount       *int             `json:"pageCount"`
	Language        string           `json:"language"`
	Price           *decimal.Decimal `json:"price"`
	Thumbnail       string           `json:"thumbnail"`
	URL             string           `json:"url"`
	AuthorID        *uint            `json:"authorId"`
	Genres          []string         `json:"genres"`
}

// CreateRoleRequest creates or renames a role.
type CreateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreatePermissionRequest adds a permission to the catalog.
type CreatePermissionRequest struct {
	Name string `json:"name" binding:"required"`
}

// GenreRequest adds a genre.
type GenreRequest struct {
	Name string `json:"name" binding:"required"`
}

// AuthorRequest creates an author.
type AuthorRequest struct {
	FirstName   string      `json:"firstName" binding:"required"`
	LastName    string      `json:"lastName" binding:"required"`
	Email       string      `json:"email" binding:"omitempty,email"`
	BirthDate   *model.Date `json:"birthDate"`
	Nationality string      `json:"nationality"`
}

// toUserResponse scrubs the password hash and flattens roles.
func toUserResponse(user *model.User) UserResponse {
	roles := make([]RoleRef, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, RoleRef{RoleID: r.ID, Name: r.Name})
	}
	subjectID := ""
	if user.SubjectID != nil {
		subjectID = *user.SubjectID
	}
	return UserResponse{
		UserID:      user.ID,
		SubjectID:   subjectID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DateOfBirth: user.DateOfBirth,
		IsActive:    user.IsActive,
		Roles:       roles,
	}
}
