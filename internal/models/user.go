package models

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"       json:"id"`
	Email        string     `gorm:"uniqueIndex;size:120;not null"  json:"email"`
	Username     string     `gorm:"uniqueIndex;size:80;not null"   json:"username"`
	PasswordHash string     `gorm:"size:255;not null"              json:"-"`
	FirstName    string     `gorm:"size:50"                        json:"first_name"`
	LastName     string     `gorm:"size:50"                        json:"last_name"`
	Phone        string     `gorm:"size:20"                        json:"phone"`
	IsActive     bool       `gorm:"not null;default:true"          json:"is_active"`
	IsVerified   bool       `gorm:"not null;default:false"         json:"is_verified"`
	CreatedAt    time.Time  `                                      json:"created_at"`
	UpdatedAt    time.Time  `                                      json:"updated_at"`
	LastLogin    *time.Time `                                      json:"last_login,omitempty"`
	Addresses    []Address  `gorm:"constraint:OnDelete:CASCADE"    json:"addresses,omitempty"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

type Address struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	UserID       uint      `gorm:"index;not null"                json:"user_id"`
	FullName     string    `gorm:"size:100;not null"             json:"full_name"`
	Phone        string    `gorm:"size:20;not null"              json:"phone"`
	AddressLine1 string    `gorm:"size:200;not null"             json:"address_line1"`
	AddressLine2 string    `gorm:"size:200"                      json:"address_line2"`
	City         string    `gorm:"size:100;not null"             json:"city"`
	State        string    `gorm:"size:100;not null"             json:"state"`
	PostalCode   string    `gorm:"size:20;not null"              json:"postal_code"`
	Country      string    `gorm:"size:100;not null;default:India" json:"country"`
	IsDefault    bool      `gorm:"not null;default:false"        json:"is_default"`
	CreatedAt    time.Time `                                     json:"created_at"`
}

const DefaultCountry = "India"

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Admin struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"      json:"id"`
	Email        string     `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Username     string     `gorm:"uniqueIndex;size:80;not null"  json:"username"`
	PasswordHash string     `gorm:"size:255;not null"             json:"-"`
	FullName     string     `gorm:"size:100"                      json:"full_name"`
	Role         AdminRole  `gorm:"size:20;not null;default:admin" json:"role"`
	IsActive     bool       `gorm:"not null;default:true"         json:"is_active"`
	CreatedAt    time.Time  `                                     json:"created_at"`
	UpdatedAt    time.Time  `                                     json:"updated_at"`
	LastLogin    *time.Time `                                     json:"last_login,omitempty"`
}

func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// AdminInvitation records an invitation token minted by a super admin.
// The token itself is never stored, only its JTI.
type AdminInvitation struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"     json:"id"`
	JTI       string     `gorm:"uniqueIndex;size:64;not null" json:"jti"`
	Email     string     `gorm:"size:120;not null;index"      json:"email"`
	Role      AdminRole  `gorm:"size:20;not null"             json:"role"`
	IssuedBy  uint       `gorm:"not null"                     json:"issued_by"`
	ExpiresAt time.Time  `gorm:"not null"                     json:"expires_at"`
	UsedAt    *time.Time `                                    json:"used_at,omitempty"`
	CreatedAt time.Time  `                                    json:"created_at"`
}

type Subscriber struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	CreatedAt time.Time `                                     json:"created_at"`
}
