package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	roleDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/hospital-management/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-management/internal/core/events"
)

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	MarkVerified(ctx context.Context, id int64) error
	GetRoleByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	LoadPrincipal(ctx context.Context, id int64) (*User, error)
}

// OTPSender delivers the login code as part of the login request.
type OTPSender interface {
	SendLoginOTP(ctx context.Context, to, name, otp string, ttl time.Duration) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	otp        *OTPIssuer
	otpSender  OTPSender
	events     events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, otp *OTPIssuer, otpSender OTPSender, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		otp:        otp,
		otpSender:  otpSender,
		events:     publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a patient account. Accounts opened by an admin or a
// receptionist are verified immediately; self sign ups get a verification
// mail. Mail goes out through the event bus after the user row is committed,
// so a delivery failure never undoes the registration.
func (s *Service) Register(ctx context.Context, dto RegisterDTO, actor *User) (*RegisterResult, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	patientRole, err := s.repo.GetRoleByName(ctx, RolePatient)
	if err != nil {
		return nil, internal.NewInternalError("failed to load default role", err)
	}
	if patientRole == nil {
		s.logger.Error("default patient role missing, run the seed command")
		return nil, internal.NewInternalError("Default Patient role not found", errors.New("patient role not seeded"))
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	staffCreated := actor != nil && actor.HasRole(RoleAdmin, RoleReceptionist)

	row := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		Phone:        dto.Phone,
		Gender:       dto.Gender,
		PasswordHash: hash,
		IsVerified:   staffCreated,
		RoleID:       &patientRole.ID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	result := &RegisterResult{User: ToAccountSummary(row)}

	if staffCreated {
		result.Message = "User registered successfully!"
		s.publish(ctx, events.NewAccountCreatedEvent(row.ID, row.Email, row.Name, actor.ID))
		s.logger.Info("account created by staff", "user_id", row.ID, "created_by", actor.ID)
		return result, nil
	}

	result.Message = "User registered successfully! Please check your email for verification."
	verifyToken, err := s.tokens.GenerateVerifyToken(row.ID, row.Email)
	if err != nil {
		s.logger.Error("failed to generate verification token", "user_id", row.ID, "error", err)
		return result, nil
	}
	s.publish(ctx, events.NewUserRegisteredEvent(row.ID, row.Email, row.Name, verifyToken))
	s.logger.Info("user registered", "user_id", row.ID)

	return result, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// Login checks the password and mails a one time code. The returned hash is
// needed, together with the code, by VerifyLoginOTP.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginChallenge, error) {
	dto.Email = NormalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login rejected: wrong password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	phone := challengePhone(u)
	otp, hash, err := s.otp.Issue(challengeBinding(u))
	if err != nil {
		return nil, internal.NewInternalError("failed to issue otp", err)
	}

	if err := s.otpSender.SendLoginOTP(ctx, u.Email, u.Name, otp, s.otp.TTL()); err != nil {
		s.logger.Error("failed to send otp mail", "user_id", u.ID, "error", err)
		return nil, internal.NewInternalError("Failed to send OTP email", err)
	}

	return &LoginChallenge{
		Message: "OTP sent to your email",
		Email:   u.Email,
		Phone:   phone,
		Hash:    hash,
	}, nil
}

// challengePhone is the value the OTP hash is bound to. Accounts without a
// phone number use their email address.
func challengePhone(u *userDatamodel.User) string {
	if u.Phone != nil && *u.Phone != "" {
		return *u.Phone
	}
	return u.Email
}

// challengeBinding is what the OTP hash is signed over. A challenge issued to
// one account never verifies for another.
func challengeBinding(u *userDatamodel.User) string {
	return strconv.FormatInt(u.ID, 10) + ":" + u.Email + ":" + challengePhone(u)
}

func (s *Service) VerifyLoginOTP(ctx context.Context, dto VerifyOTPDTO) (*LoginResponse, error) {
	dto.Email = NormalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	if appErr := s.otp.Verify(dto.OTP, dto.Hash, challengeBinding(u)); appErr != nil {
		s.logger.Warn("login otp rejected", "user_id", u.ID, "code", appErr.Code)
		return nil, appErr
	}

	tokens, err := s.issueTokens(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return &LoginResponse{
		Message:    "Logged in successfully!",
		AuthTokens: tokens,
		User:       ToAccountSummary(u),
	}, nil
}

func (s *Service) issueTokens(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, TokenPurposeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		return AuthTokens{}, internal.ErrUserNotFound
	}

	return s.issueTokens(u.ID, u.Email)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token, TokenPurposeVerify)
	if err != nil {
		return internal.ErrInvalidToken
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}
	if u.IsVerified {
		return nil
	}

	if err := s.repo.MarkVerified(ctx, u.ID); err != nil {
		return internal.NewInternalError("failed to verify user", err)
	}
	s.logger.Info("user email verified", "user_id", u.ID)
	return nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString, TokenPurposeAccess)
}

// GetPrincipal loads the user together with its role and permission names.
func (s *Service) GetPrincipal(ctx context.Context, userID int64) (*User, error) {
	principal, err := s.repo.LoadPrincipal(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if principal == nil {
		return nil, internal.ErrUserNotFound
	}
	return principal, nil
}

func ToAccountSummary(u *userDatamodel.User) AccountSummary {
	return AccountSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Gender:       u.Gender,
		IsVerified:   u.IsVerified,
		RoleID:       u.RoleID,
		ProfileID:    u.ProfileID,
		ProfileModel: u.ProfileModel,
		CreatedAt:    u.CreatedAt,
	}
}
