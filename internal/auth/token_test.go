package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	codec, err := NewCodec(secret, "HS256", 30*time.Minute)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsNonHMAC(t *testing.T) {
	_, err := NewCodec("secret", "RS256", time.Minute)
	require.Error(t, err)

	_, err = NewCodec("secret", "nonsense", time.Minute)
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "secret")

	token, err := codec.Encode("alice@example.com", []string{"user", "administrator"}, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, []string{"user", "administrator"}, claims.Roles)
}

func TestDecodeIsPureGivenFixedClock(t *testing.T) {
	codec := newTestCodec(t, "secret")
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return frozen }

	token, err := codec.Encode("alice@example.com", nil, time.Hour)
	require.NoError(t, err)

	first, err := codec.Decode(token)
	require.NoError(t, err)
	second, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, first.ExpiresAt.Equal(frozen.Add(time.Hour)))
	assert.True(t, first.IssuedAt.Equal(frozen))
}

func TestDecodeExpiredToken(t *testing.T) {
	codec := newTestCodec(t, "secret")
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issued }

	token, err := codec.Encode("alice@example.com", nil, time.Hour)
	require.NoError(t, err)

	codec.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = codec.Decode(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestDecodeWrongKey(t *testing.T) {
	signer := newTestCodec(t, "secret-a")
	verifier := newTestCodec(t, "secret-b")

	token, err := signer.Encode("alice@example.com", nil, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Decode(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenSignature))
}

func TestDecodeMalformedToken(t *testing.T) {
	codec := newTestCodec(t, "secret")

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTokenMalformed), "input %q", raw)
	}
}

func TestDecodeRejectsEmptySubject(t *testing.T) {
	codec := newTestCodec(t, "secret")

	token, err := codec.Encode("", nil, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenMalformed))
}

func TestEncodeDefaultTTL(t *testing.T) {
	codec := newTestCodec(t, "secret")
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return frozen }

	token, err := codec.Encode("alice@example.com", nil, 0)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Equal(frozen.Add(codec.DefaultTTL())))
}
