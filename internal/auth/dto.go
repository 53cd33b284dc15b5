package auth

import (
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/core/common/validation"
)

var Genders = []string{"male", "female", "other"}

type RegisterDTO struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Gender   string  `json:"gender"`
}

func (d *RegisterDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
	d.Gender = strings.ToLower(strings.TrimSpace(d.Gender))
	if d.Phone != nil {
		p := strings.TrimSpace(*d.Phone)
		if p == "" {
			d.Phone = nil
		} else {
			d.Phone = &p
		}
	}
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6).MaxLength(72)
	v.Field("gender", d.Gender).Required().OneOf(Genders...)
	return v.Validate()
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// VerifyOTPDTO carries the mailed code and the challenge hash. Phone is
// accepted for older clients and ignored; the challenge is checked against
// the stored account.
type VerifyOTPDTO struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Hash  string `json:"hash"`
	Phone string `json:"phone"`
}

func (d VerifyOTPDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("otp", d.OTP).Required()
	v.Field("hash", d.Hash).Required()
	return v.Validate()
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("refreshToken", d.RefreshToken).Required()
	return v.Validate()
}

// LoginChallenge is returned by the password step; the client echoes hash
// back together with the mailed OTP.
type LoginChallenge struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Hash    string `json:"hash"`
}

type AccountSummary struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	Gender       string    `json:"gender"`
	IsVerified   bool      `json:"isVerified"`
	RoleID       *int64    `json:"roleId"`
	ProfileID    *int64    `json:"profileId"`
	ProfileModel *string   `json:"profileModel"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Message string `json:"message"`
	AuthTokens
	User AccountSummary `json:"user"`
}

type RegisterResult struct {
	Message string         `json:"message"`
	User    AccountSummary `json:"user"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
