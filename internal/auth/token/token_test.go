package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "shortlink/pkg/domain-errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(opts ...Option) *JWTService {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewJWTService("test-signing-key", opts...)
}

func Test_GenerateAndValidate(t *testing.T) {
	svc := newService()

	tok, err := svc.Generate("ada", "sess-1", fixedNow.Add(24*time.Hour))
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Username())
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, fixedNow.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func Test_Validate_Expired(t *testing.T) {
	svc := newService()
	tok, err := svc.Generate("ada", "sess-1", fixedNow.Add(time.Minute))
	require.NoError(t, err)

	later := newService(WithClock(func() time.Time { return fixedNow.Add(2 * time.Minute) }))
	_, err = later.Validate(tok)

	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongKey(t *testing.T) {
	tok, err := newService().Generate("ada", "sess-1", fixedNow.Add(time.Hour))
	require.NoError(t, err)

	other := NewJWTService("another-key", WithClock(func() time.Time { return fixedNow }))
	_, err = other.Validate(tok)

	require.ErrorContains(t, err, "invalid token")
}

func Test_Validate_WrongIssuer(t *testing.T) {
	tok, err := newService(WithIssuer("someone-else")).Generate("ada", "sess-1", fixedNow.Add(time.Hour))
	require.NoError(t, err)

	_, err = newService().Validate(tok)
	require.ErrorContains(t, err, "invalid token")
}

func Test_Validate_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ada",
			ID:        "sess-1",
			Issuer:    defaultIssuer,
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService().Validate(tok)
	require.ErrorContains(t, err, "invalid token")
}

func Test_Validate_Garbage(t *testing.T) {
	_, err := newService().Validate("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")

	_, err = newService().Validate("")
	require.ErrorContains(t, err, "missing token")
}

func Test_Generate_RequiresSubject(t *testing.T) {
	_, err := newService().Generate("", "sess-1", fixedNow.Add(time.Hour))
	require.Error(t, err)
}
