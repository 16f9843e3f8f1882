package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    at, err := NewAccessToken("s3cret", 42, "ADMIN", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

    c, err := ParseAccessToken("s3cret", at.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), c.UserID)
    assert.Equal(t, "ADMIN", c.Role)

    _, err = ParseAccessToken("other", at.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Rejects(t *testing.T) {
    expired, err := NewAccessToken("s", 1, "GUEST", -1)
    require.NoError(t, err)
    _, err = ParseAccessToken("s", expired.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "ADMIN"})
    raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)
    _, err = ParseAccessToken("s", raw)
    assert.ErrorIs(t, err, ErrInvalidToken)

    noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "ADMIN"}).SignedString([]byte("s"))
    require.NoError(t, err)
    _, err = ParseAccessToken("s", noSub)
    assert.ErrorIs(t, err, ErrInvalidToken)

    _, err = ParseAccessToken("s", "not-a-jwt")
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_NumericSubject(t *testing.T) {
    raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": 7, "role": "GUEST", "exp": time.Now().Add(time.Minute).Unix(),
    }).SignedString([]byte("s"))
    require.NoError(t, err)
    c, err := ParseAccessToken("s", raw)
    require.NoError(t, err)
    assert.Equal(t, uint64(7), c.UserID)
}

func TestRefreshToken(t *testing.T) {
    a, err := NewRefreshToken(30)
    require.NoError(t, err)
    b, err := NewRefreshToken(30)
    require.NoError(t, err)
    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.Len(t, HashRefreshRaw(a.Raw), 64)
    assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
    h, err := HashPassword("secret1", bcrypt.MinCost)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(h, "secret1"))
    assert.False(t, VerifyPassword(h, "nope-nope"))
}

func TestHashPassword_Rules(t *testing.T) {
    _, err := HashPassword("short", bcrypt.MinCost)
    assert.ErrorIs(t, err, ErrWeakPassword)

    h, err := HashPassword("longenough", 99)
    require.NoError(t, err)
    cost, err := bcrypt.Cost([]byte(h))
    require.NoError(t, err)
    assert.Equal(t, bcrypt.DefaultCost, cost)
}
