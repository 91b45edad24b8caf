package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "campusconnect.test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, expiresIn, err := svc.GenerateToken(TokenSubject{
		UserID:    "uid-1",
		Email:     "asha@college.edu",
		Role:      "student",
		SessionID: "session-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "asha@college.edu", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "session-1", claims.ID)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateToken(TokenSubject{UserID: "uid-1", SessionID: "s"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "campusconnect.test"})
	token, _, err := other.GenerateToken(TokenSubject{UserID: "uid-1", SessionID: "s"})
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_IncompleteSubject(t *testing.T) {
	_, _, err := newTestJWTService().GenerateToken(TokenSubject{UserID: "uid-1"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "abc.def", want: "abc.def"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPasswordWithCost("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
