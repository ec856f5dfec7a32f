package models

import "time"

// Roles recognized by the system. The three authority roles gate priority
// overrides and transfer approval.
const (
	RoleAdmin                  = "ADMIN"
	RoleIPDManager             = "IPD_MANAGER"
	RoleMedicalSuperintendent  = "MEDICAL_SUPERINTENDENT"
	RoleEmergencyHead          = "EMERGENCY_HEAD"
	RoleDoctor                 = "DOCTOR"
	RoleNurse                  = "NURSE"
)

// AuthorityRoles are the roles allowed to override priority and approve or
// execute transfers on behalf of the hospital.
var AuthorityRoles = []string{RoleIPDManager, RoleMedicalSuperintendent, RoleEmergencyHead}

// HasAuthority reports whether role is one of the authority roles.
func HasAuthority(role string) bool {
	for _, r := range AuthorityRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleIPDManager, RoleMedicalSuperintendent, RoleEmergencyHead, RoleDoctor, RoleNurse:
		return true
	}
	return false
}

// User represents the users table
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:50" json:"username"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	Role         string    `gorm:"size:30;not null;default:'NURSE'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null;size:255;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
