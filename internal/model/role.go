package model

// Role names form a closed set seeded at first boot.
const (
	RoleAdmin     = "ADMIN"
	RolePublisher = "PUBLISHER"
	RoleReader    = "READER"
)

// Permission names form a closed set seeded at first boot.
const (
	PermRead   = "READ"
	PermWrite  = "WRITE"
	PermDelete = "DELETE"
	PermAdmin  = "ADMIN"
)

// Role groups permissions under a unique name.
type Role struct {
	ID          uint         `gorm:"primaryKey;column:role_id" json:"roleId"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions;joinForeignKey:role_id;joinReferences:permission_id;" json:"permissions,omitempty"`
}

// Permission is a single grantable capability.
type Permission struct {
	ID   uint   `gorm:"primaryKey;column:permission_id" json:"permissionId"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}
