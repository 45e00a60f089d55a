package services_test

import (
	"context"
	"testing"
	"time"

	"brotodesk/internal/models"
	"brotodesk/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := h.auth.Register(ctx, services.RegisterInput{
		Name:     "Asha Student",
		Email:    "asha@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, h.auth.VerifyPassword(user.PasswordHash, "secret123"))

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := h.auth.Register(ctx, services.RegisterInput{
			Name:     "Someone Else",
			Email:    "ASHA@example.com",
			Password: "another1",
		})
		requireKind(t, err, services.KindConflict)
		assert.ErrorIs(t, err, services.ErrEmailTaken)
	})

	t.Run("validation errors are aggregated", func(t *testing.T) {
		_, err := h.auth.Register(ctx, services.RegisterInput{Name: "A", Email: "nope", Password: "123"})
		requireKind(t, err, services.KindValidation)

		var verr *services.Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Name must be at least 2 characters, Invalid email address, Password must be at least 6 characters", verr.Message)
		require.Len(t, verr.Details, 3)
		assert.Equal(t, "name", verr.Details[0].Field)
		assert.Equal(t, "email", verr.Details[1].Field)
		assert.Equal(t, "password", verr.Details[2].Field)
	})

	t.Run("superadmin cannot self-register", func(t *testing.T) {
		_, err := h.auth.Register(ctx, services.RegisterInput{
			Name:     "Root",
			Email:    "root@example.com",
			Password: "secret123",
			Role:     "SUPERADMIN",
		})
		requireKind(t, err, services.KindValidation)
	})
}

func TestLoginDoesNotRevealWhichEmailsExist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "Asha Student", "asha@example.com", models.RoleStudent)

	_, _, wrongPassword := h.auth.Login(ctx, services.LoginInput{Email: "asha@example.com", Password: "wrong-password"})
	_, _, unknownEmail := h.auth.Login(ctx, services.LoginInput{Email: "ghost@example.com", Password: "wrong-password"})

	requireKind(t, wrongPassword, services.KindUnauthorized)
	requireKind(t, unknownEmail, services.KindUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "Invalid credentials", wrongPassword.Error())
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	h := newHarness(t)
	actor := h.register(t, "Asha Student", "asha@example.com", models.RoleStudent)

	token, user, err := h.auth.Login(context.Background(), services.LoginInput{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, user.ID)

	claims, err := h.auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "brotodesk-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	actor := h.register(t, "Asha Student", "asha@example.com", models.RoleStudent)

	sign := func(secret string, exp time.Time) string {
		claims := services.Claims{
			UserID: actor.ID,
			Email:  actor.Email,
			Role:   actor.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := map[string]string{
		"expired":   sign(h.cfg.JWT.Secret, time.Now().Add(-time.Hour)),
		"wrong key": sign("another-secret", time.Now().Add(time.Hour)),
		"malformed": "not-a-token",
		"empty":     "",
		"unsigned":  func() string { s, _ := jwt.New(jwt.SigningMethodNone).SignedString(jwt.UnsafeAllowNoneSignatureType); return s }(),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h.auth.ParseToken(token)
			requireKind(t, err, services.KindUnauthorized)
		})
	}
}

func TestCreateDefaultUserOnlyWhenEmpty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.auth.CreateDefaultUser(ctx))
	require.NoError(t, h.auth.CreateDefaultUser(ctx))

	var users []models.User
	require.NoError(t, h.db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@brototype.com", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)

	_, _, err := h.auth.Login(ctx, services.LoginInput{Email: "admin@brototype.com", Password: "admin123"})
	assert.NoError(t, err)
}
