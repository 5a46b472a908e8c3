package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/repository"
	"cleanhome-backend/internal/service"
	"cleanhome-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidResetCode   = errors.New("invalid or expired reset code")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout revokes the access token and, when given, the refresh token.
	Logout(ctx context.Context, actor entity.Actor, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	jwtService        *jwt.JWTService
	revocationService *service.TokenRevocationService
	resetCodeService  *service.ResetCodeService
	notifier          service.Notifier
	auditService      service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	jwtService *jwt.JWTService,
	revocationService *service.TokenRevocationService,
	resetCodeService *service.ResetCodeService,
	notifier service.Notifier,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		roleRepo:          roleRepo,
		jwtService:        jwtService,
		revocationService: revocationService,
		resetCodeService:  resetCodeService,
		notifier:          notifier,
		auditService:      auditService,
	}
}

// Register creates a customer account. Staff and admins are provisioned
// directly in the database.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	role, err := u.roleRepo.FindByName(ctx, tx, entity.RoleCustomer)
	if err != nil {
		u.log.Warnf("Failed to find customer role: %+v", err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    normalizeEmail(req.Email),
		Password: string(hashedPassword),
		FullName: req.FullName,
		Phone:    req.Phone,
		RoleID:   role.ID,
		Status:   entity.UserStatusActive,
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  role.RoleName,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Find user by email (read-only, no transaction needed)
	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	tokens, err := u.issueTokens(user.ID, user.Email, user.RoleID)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, u.db, &user.ID, entity.AuditActionUserLogin, map[string]interface{}{
		"email": user.Email,
	}); err != nil {
		u.log.Warnf("Failed to audit login for %s: %+v", user.ID, err)
	}

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, actor entity.Actor, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error {
	if err := u.revocationService.Revoke(ctx, accessTokenID, accessExpiresAt); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.TokenType == jwt.RefreshToken && claims.UserID == actor.UserID {
			if err := u.revocationService.Revoke(ctx, claims.TokenID, claims.ExpiresAtTime()); err != nil {
				u.log.Warnf("Failed to revoke refresh token: %+v", err)
				return err
			}
		}
	}

	if err := u.auditService.LogEvent(ctx, u.db, &actor.UserID, entity.AuditActionUserLogout, map[string]interface{}{
		"token_id": accessTokenID,
	}); err != nil {
		u.log.Warnf("Failed to audit logout for %s: %+v", actor.UserID, err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	revoked, err := u.revocationService.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token revocation: %+v", err)
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	// Rotate: the old refresh token stops working once the new pair exists.
	if err := u.revocationService.Revoke(ctx, claims.TokenID, claims.ExpiresAtTime()); err != nil {
		u.log.Warnf("Failed to revoke old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(user.ID, user.Email, user.RoleID)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// ForgotPassword issues a reset code for a known active account. Unknown
// addresses get the same silent success.
func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil || !user.IsActive() {
		u.log.Infof("Password reset requested for unknown or inactive account")
		return nil
	}

	code, err := u.resetCodeService.Issue(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to issue reset code: %+v", err)
		return err
	}

	if err := u.notifier.SendPasswordResetCode(ctx, email, code); err != nil {
		u.log.Warnf("Failed to deliver reset code: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)

	ok, err := u.resetCodeService.Consume(ctx, email, req.Code)
	if err != nil {
		u.log.Warnf("Failed to consume reset code: %+v", err)
		return err
	}
	if !ok {
		return ErrInvalidResetCode
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByEmail(tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil {
		return ErrInvalidResetCode
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	if err := u.userRepo.UpdatePassword(tx, user.ID, string(hashedPassword)); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}

	if err := u.auditService.LogEvent(ctx, tx, &user.ID, entity.AuditActionPasswordReset, map[string]interface{}{
		"email": email,
	}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) issueTokens(userID uuid.UUID, email string, roleID int) (*dto.TokenResponse, error) {
	accessToken, _, err := u.jwtService.GenerateAccessToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, _, err := u.jwtService.GenerateRefreshToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
