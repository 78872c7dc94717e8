package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/campusflow/internal/app/models"
)

func testJWTService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "campusflow.app",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "student@campusflow.app",
		RoleType: models.RoleStudent,
	}
}

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	svc := testJWTService(time.Hour)

	pair, err := svc.GenerateTokenPair(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := svc.ParseClaims(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "student@campusflow.app", claims.Email)
	assert.Equal(t, string(models.RoleStudent), claims.RoleType)
	assert.Equal(t, "campusflow.app", claims.Issuer)
}

func TestParseClaims_Expired(t *testing.T) {
	svc := testJWTService(-time.Minute)

	pair, err := svc.GenerateTokenPair(testUser())
	assert.NoError(t, err)

	_, err = svc.ParseClaims(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseClaims_WrongIssuer(t *testing.T) {
	other := NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "someone-else.app",
	})
	pair, err := other.GenerateTokenPair(testUser())
	assert.NoError(t, err)

	_, err = testJWTService(time.Hour).ParseClaims(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseClaims_WrongSecret(t *testing.T) {
	pair, err := testJWTService(time.Hour).GenerateTokenPair(testUser())
	assert.NoError(t, err)

	forged := NewJWTService(JWTConfig{
		SecretKey:       "other-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "campusflow.app",
	})
	_, err = forged.ParseClaims(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseClaims_Empty(t *testing.T) {
	_, err := testJWTService(time.Hour).ParseClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
