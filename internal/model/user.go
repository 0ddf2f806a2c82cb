package model

import "time"

// User is the local profile linked to the identity provider by SubjectID.
// Credentials live at the IdP; the bcrypt hash is kept for local
// verification during login.
type User struct {
	ID           uint      `gorm:"primaryKey;column:user_id" json:"userId"`
	SubjectID    *string   `gorm:"type:varchar(255);uniqueIndex" json:"subjectId,omitempty"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(255);not null" json:"firstName"`
	LastName     string    `gorm:"type:varchar(255);not null" json:"lastName"`
	DateOfBirth  Date      `gorm:"not null" json:"dateOfBirth"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	Roles        []Role    `gorm:"many2many:user_roles;joinForeignKey:user_id;joinReferences:role_id;" json:"roles"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Authorities returns the union of role names and permission names,
// the strings the authorization layer checks against.
func (u *User) Authorities() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, role := range u.Roles {
		add(role.Name)
		for _, perm := range role.Permissions {
			add(perm.Name)
		}
	}
	return out
}
