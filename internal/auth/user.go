package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO, actor *User) (*RegisterResult, error)
	Login(ctx context.Context, dto LoginDTO) (*LoginChallenge, error)
	VerifyLoginOTP(ctx context.Context, dto VerifyOTPDTO) (*LoginResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	VerifyEmail(ctx context.Context, token string) error
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetPrincipal(ctx context.Context, userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, email string) (string, error)
	GenerateRefreshToken(userID int64, email string) (string, error)
	GenerateVerifyToken(userID int64, email string) (string, error)
	ValidateToken(tokenString string, purpose TokenPurpose) (*Claims, error)
}

// Role is the caller's role as loaded at authentication time, with its
// permission names flattened.
type Role struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	ProfileModel string   `json:"profileModel,omitempty"`
	Permissions  []string `json:"permissions"`
}

// User is the authenticated principal attached to the request context.
type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Verified     bool    `json:"isVerified"`
	Role         *Role   `json:"role"`
	ProfileID    *int64  `json:"profileId"`
	ProfileModel *string `json:"profileModel"`
}

func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

func (u *User) HasRole(names ...string) bool {
	role := u.RoleName()
	if role == "" {
		return false
	}
	for _, n := range names {
		if n == role {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	if u == nil || u.Role == nil {
		return false
	}
	for _, userPerm := range u.Role.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
	RolePatient      = "patient"
)

// Permissions checked by route gates in addition to role names.
const (
	PermissionAssignRoles        = "assign_roles"
	PermissionViewPatientRecords = "view_patient_records"
)

type TokenPurpose string

const (
	TokenPurposeAccess  TokenPurpose = "access"
	TokenPurposeRefresh TokenPurpose = "refresh"
	TokenPurposeVerify  TokenPurpose = "verify"
)

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Claims struct {
	UserID  int64        `json:"id"`
	Email   string       `json:"email"`
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	VerifyTokenTTL     time.Duration
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
