package usecase

import (
	"context"
	"testing"
	"time"

	"cleanhome-backend/config"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	repoimpl "cleanhome-backend/internal/repository"
	"cleanhome-backend/internal/service"
	"cleanhome-backend/internal/service/mocks"
	"cleanhome-backend/internal/testutil"
	"cleanhome-backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db       *gorm.DB
	store    *mocks.TTLStore
	notifier *mocks.Notifier
	jwt      *jwt.JWTService
	auth     AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.NewLogger()
	store := mocks.NewTTLStore(t)
	notifier := mocks.NewNotifier(t)
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})

	auth := NewAuthUsecase(db, log,
		repoimpl.NewUserRepository(),
		repoimpl.NewRoleRepository(),
		jwtService,
		service.NewTokenRevocationService(store),
		service.NewResetCodeService(store, 15*time.Minute),
		notifier,
		service.NewAuditService(log, repoimpl.NewAuditLogRepository()),
	)

	return &authFixture{db: db, store: store, notifier: notifier, jwt: jwtService, auth: auth}
}

func (f *authFixture) register(t *testing.T, email, password string) *dto.UserResponse {
	t.Helper()
	user, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: "Nguyen Van A",
	})
	require.NoError(t, err)
	return user
}

func TestAuthUsecase_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := f.register(t, "  Buyer@Example.com ", "secret123")
	assert.Equal(t, "buyer@example.com", user.Email)
	assert.Equal(t, entity.RoleCustomer, user.Role)

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{Email: "buyer@example.com", Password: "secret123", FullName: "Dup"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "BUYER@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, entity.RoleIDCustomer, claims.RoleID)
	assert.Equal(t, jwt.AccessToken, claims.TokenType)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "buyer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthUsecase_LoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "buyer@example.com", "secret123")
	require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", user.ID).Update("status", entity.UserStatusLocked).Error)

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthUsecase_RefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "buyer@example.com", "secret123")

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	key := "auth:revoked:" + claims.TokenID
	f.store.On("Get", mock.Anything, key).Return("", false, nil).Once()
	f.store.On("Set", mock.Anything, key, "1", mock.AnythingOfType("time.Duration")).Return(nil).Once()

	fresh, err := f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	f.store.On("Get", mock.Anything, key).Return("1", true, nil).Once()
	_, err = f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthUsecase_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.register(t, "buyer@example.com", "secret123")

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	access, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	f.store.On("Set", mock.Anything, "auth:revoked:"+access.TokenID, "1", mock.AnythingOfType("time.Duration")).Return(nil).Once()
	f.store.On("Set", mock.Anything, "auth:revoked:"+refresh.TokenID, "1", mock.AnythingOfType("time.Duration")).Return(nil).Once()

	actor := entity.Actor{UserID: user.ID, RoleID: entity.RoleIDCustomer}
	require.NoError(t, f.auth.Logout(ctx, actor, access.TokenID, access.ExpiresAtTime(), tokens.RefreshToken))
}

func TestAuthUsecase_ForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.NoError(t, err)
	f.store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "SendPasswordResetCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthUsecase_ResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "buyer@example.com", "secret123")

	const key = "auth:reset:buyer@example.com"
	var code string
	f.store.On("Set", mock.Anything, key, mock.AnythingOfType("string"), 15*time.Minute).
		Run(func(args mock.Arguments) { code = args.String(2) }).
		Return(nil).Once()
	f.notifier.On("SendPasswordResetCode", mock.Anything, "buyer@example.com", mock.AnythingOfType("string")).Return(nil).Once()

	require.NoError(t, f.auth.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "Buyer@example.com"}))
	require.Len(t, code, 6)

	f.store.On("Get", mock.Anything, key).Return(code, true, nil).Once()
	err := f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "buyer@example.com", Code: "000000x", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidResetCode)

	f.store.On("Get", mock.Anything, key).Return(code, true, nil).Once()
	f.store.On("Take", mock.Anything, key).Return(code, true, nil).Once()
	require.NoError(t, f.auth.ResetPassword(ctx, &dto.ResetPasswordRequest{Email: "buyer@example.com", Code: code, NewPassword: "newsecret"}))

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "buyer@example.com", Password: "newsecret"})
	assert.NoError(t, err)
	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var n int64
	require.NoError(t, f.db.Model(&entity.AuditLog{}).Where("action = ?", entity.AuditActionPasswordReset).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
