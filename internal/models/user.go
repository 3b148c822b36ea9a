package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the fixed set of principals known to the API.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleCanteen Role = "canteen"
)

// ParseRole rejects anything other than the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTeacher, RoleCanteen:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleCanteen
}

// UnmarshalJSON rejects unknown roles while decoding, so a token carrying
// any other role never parses.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

type User struct {
	ID                     int64   `db:"id"`
	Login                  string  `db:"login"`
	PasswordHash           string  `db:"password_hash"`
	EducationalInstitution string  `db:"educational_institution"`
	Role                   Role    `db:"role"`
	ClassName              *string `db:"class_name"`
	CanteenID              *int64  `db:"canteen_id"`
}

// Public returns the projection that is safe to send to clients.
func (u *User) Public() UserPublic {
	p := UserPublic{
		ID:                     u.ID,
		Login:                  u.Login,
		Role:                   u.Role,
		EducationalInstitution: u.EducationalInstitution,
	}
	// class and canteen link only mean something for teachers
	if u.Role == RoleTeacher {
		p.ClassName = u.ClassName
		p.CanteenID = u.CanteenID
	}
	return p
}

// UserPublic never carries the password hash.
type UserPublic struct {
	ID                     int64   `json:"id"`
	Login                  string  `json:"login"`
	Role                   Role    `json:"role"`
	EducationalInstitution string  `json:"educational_institution"`
	ClassName              *string `json:"class_name,omitempty"`
	CanteenID              *int64  `json:"canteen_id,omitempty"`
}

// CanteenSummary is the public listing entry used by teachers to pick a canteen.
type CanteenSummary struct {
	ID                     int64  `db:"id" json:"id"`
	Login                  string `db:"login" json:"login"`
	EducationalInstitution string `db:"educational_institution" json:"educational_institution"`
}

// Claims defines the structure of the JWT claims. The login travels in the
// registered "sub" claim.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type RegisterCanteenInput struct {
	Login                  string `json:"login" binding:"required,max=64"`
	Password               string `json:"password" binding:"required,min=6"`
	EducationalInstitution string `json:"educational_institution" binding:"required"`
}

type RegisterTeacherInput struct {
	Login                  string `json:"login" binding:"required,max=64"`
	Password               string `json:"password" binding:"required,min=6"`
	EducationalInstitution string `json:"educational_institution" binding:"required"`
	CanteenID              int64  `json:"canteen_id" binding:"required,gt=0"`
	ClassName              string `json:"class_name" binding:"required"`
}

type LoginInput struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileUpdateInput only touches the fields that are present.
type ProfileUpdateInput struct {
	EducationalInstitution *string `json:"educational_institution"`
	Password               *string `json:"password" binding:"omitempty,min=6"`
	ClassName              *string `json:"class_name"`
	CanteenID              *int64  `json:"canteen_id" binding:"omitempty,gt=0"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        Role      `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
}
