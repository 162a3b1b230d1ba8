package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("super-secret", time.Hour)
	tok, exp, err := m.Issue(Identity{UserID: "user-123", Name: "alice"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	id, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-123", Name: "alice"}, id)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	// подпись корректна, но срок уже истёк
	m := NewJWTManager("secret", -1*time.Second)
	tok, _, err := m.Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredByClock(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", 24*time.Hour)
	tok, _, err := m.Issue(Identity{UserID: "u1"})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewJWTManager("right-secret", time.Hour).Issue(Identity{UserID: "u2"})
	require.NoError(t, err)

	_, err = NewJWTManager("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithmsAndMissingExpiry(t *testing.T) {
	t.Parallel()
	secret := []byte("k")
	m := NewJWTManager(string(secret), time.Hour)

	// HS512 с тем же секретом — не принимаем
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u3",
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = m.Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// без exp — не принимаем
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u3"}).SignedString(secret)
	require.NoError(t, err)
	_, err = m.Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MalformedAndEmpty(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("k", time.Hour)

	_, err := m.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("")
	assert.True(t, errors.Is(err, ErrMissingToken))
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
		err    error
	}{
		{name: "missing", header: "", err: ErrMissingToken},
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer tok", want: "tok"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", err: ErrMissingToken},
		{name: "no token", header: "Bearer   ", err: ErrMissingToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, err := BearerToken(req)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
