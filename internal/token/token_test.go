package token

import (
	"encoding/base64"
	"strings"
	"testing"

	"mygcc-backend/internal/failure"

	"github.com/stretchr/testify/require"
)

func newTestCodec(t testing.TB) Codec {
	codec, err := NewCodec([]byte("0123456789abcdef"), []byte("fedcba9876543210"))
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	_, err := NewCodec([]byte("short"), []byte("fedcba9876543210"))
	require.Error(t, err)

	_, err = NewCodec([]byte("0123456789abcdef"), []byte("short"))
	require.Error(t, err)

	_, err = NewCodec([]byte("0123456789abcdef0123456789abcdef"), []byte("fedcba9876543210"))
	require.NoError(t, err)
}

func TestRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	testCases := []Credential{
		{Username: "smithjr18", Password: "hunter2"},
		{Username: "a", Password: ""},
		{Username: "pipe|user", Password: "pa|ss|word"},
		{Username: "unicodé", Password: "пароль with spaces"},
		{Username: strings.Repeat("x", 64), Password: strings.Repeat("y", 15)},
	}

	for _, cred := range testCases {
		tok, err := codec.Encode(cred)
		require.NoError(t, err)
		if cred.Password != "" {
			require.NotContains(t, tok, cred.Password)
		}

		payload, err := codec.Decode(tok)
		require.NoError(t, err)
		require.Equal(t, cred, payload.Credential)
		require.Nil(t, payload.Cached)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	cred := Credential{Username: "smithjr18", Password: "hunter2"}
	cached := CachedSession{SessionId: "abc123sess", AuthCookie: "F00DBEEF"}

	tok, err := codec.EncodeSession(cred, cached)
	require.NoError(t, err)

	payload, err := codec.Decode(tok)
	require.NoError(t, err)
	require.Equal(t, cred, payload.Credential)
	require.NotNil(t, payload.Cached)
	require.Equal(t, cached, *payload.Cached)
}

func TestEncodeRejectsEscapeSequence(t *testing.T) {
	codec := newTestCodec(t)

	for _, cred := range []Credential{
		{Username: "user", Password: "pass&#124;word"},
		{Username: "us&#124;er", Password: "password"},
	} {
		_, err := codec.Encode(cred)
		require.ErrorIs(t, err, failure.ErrInvalidCredentials)
	}
}

func TestDecodeInvalid(t *testing.T) {
	codec := newTestCodec(t)

	threeFields, err := codec.encodeFields("a", "b", "c")
	require.NoError(t, err)
	oneField, err := codec.encodeFields("lonely")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "whitespace", token: "   "},
		{name: "not base64", token: "garbage"},
		{name: "short ciphertext", token: base64.StdEncoding.EncodeToString([]byte("tooshort"))},
		{name: "three fields", token: threeFields},
		{name: "one field", token: oneField},
	}

	for _, test := range testCases {
		_, err := codec.Decode(test.token)
		require.ErrorIs(t, err, failure.ErrInvalidToken, test.name)
	}
}

func TestDecodeWithWrongKey(t *testing.T) {
	codec := newTestCodec(t)
	tok, err := codec.Encode(Credential{Username: "user", Password: "pass"})
	require.NoError(t, err)

	other, err := NewCodec([]byte("abcdef0123456789"), []byte("fedcba9876543210"))
	require.NoError(t, err)

	payload, err := other.Decode(tok)
	if err == nil {
		// the padding happened to check out, the fields still must not.
		require.NotEqual(t, "user", payload.Credential.Username)
		return
	}
	require.ErrorIs(t, err, failure.ErrInvalidToken)
}

func TestPadding(t *testing.T) {
	for n := 0; n < 40; n++ {
		data := []byte(strings.Repeat("z", n))
		padded := pad(append([]byte{}, data...), 16)
		require.Zero(t, len(padded)%16)

		unpadded, err := unpad(padded, 16)
		require.NoError(t, err)
		require.Equal(t, data, unpadded)
	}

	_, err := unpad([]byte{1, 2, 3, 0}, 16)
	require.Error(t, err)
	_, err = unpad([]byte{1, 2, 3, 2}, 16)
	require.Error(t, err)
}
