// Package token turns portal credentials into an opaque, encrypted bearer
// token and back.
package token

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"strings"

	"mygcc-backend/internal/failure"
)

const (
	delimiter = "|"
	escaped   = "&#124;"
)

type Credential struct {
	Username string
	Password string
}

// CachedSession is the part of an authenticated portal session that can
// travel inside a token so a later request can skip the login handshake.
type CachedSession struct {
	SessionId  string
	AuthCookie string
}

type Payload struct {
	Credential Credential
	// Cached is nil for tokens that only carry credentials.
	Cached *CachedSession
}

type Codec struct {
	block cipher.Block
	iv    []byte
}

func NewCodec(key, iv []byte) (Codec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Codec{}, fmt.Errorf("token: encryption key: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return Codec{}, fmt.Errorf(
			"token: initialization vector must be %d bytes, got %d",
			block.BlockSize(), len(iv),
		)
	}
	return Codec{block: block, iv: bytes.Clone(iv)}, nil
}

func (c Codec) Encode(cred Credential) (string, error) {
	return c.encodeFields(cred.Username, cred.Password)
}

func (c Codec) EncodeSession(cred Credential, cached CachedSession) (string, error) {
	return c.encodeFields(cred.Username, cred.Password, cached.SessionId, cached.AuthCookie)
}

func (c Codec) encodeFields(fields ...string) (string, error) {
	escapedFields := make([]string, len(fields))
	for i, f := range fields {
		if strings.Contains(f, escaped) {
			return "", failure.Newf(
				failure.KindInvalidCredentials,
				"field may not contain '%s'", escaped,
			)
		}
		escapedFields[i] = strings.ReplaceAll(f, delimiter, escaped)
	}

	plaintext := pad([]byte(strings.Join(escapedFields, delimiter)), c.block.BlockSize())
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(ciphertext, plaintext)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c Codec) Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Payload{}, failure.New(failure.KindInvalidToken, "empty token")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, failure.WithKind(failure.KindInvalidToken, "decode base64", err)
	}
	size := c.block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%size != 0 {
		return Payload{}, failure.Newf(
			failure.KindInvalidToken,
			"ciphertext length %d is not a multiple of %d", len(ciphertext), size,
		)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(plaintext, ciphertext)
	plaintext, err = unpad(plaintext, size)
	if err != nil {
		return Payload{}, failure.WithKind(failure.KindInvalidToken, "decrypt", err)
	}

	fields := strings.Split(string(plaintext), delimiter)
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, escaped, delimiter)
	}

	switch len(fields) {
	case 2:
		return Payload{
			Credential: Credential{Username: fields[0], Password: fields[1]},
		}, nil
	case 4:
		return Payload{
			Credential: Credential{Username: fields[0], Password: fields[1]},
			Cached: &CachedSession{
				SessionId:  fields[2],
				AuthCookie: fields[3],
			},
		}, nil
	}
	return Payload{}, failure.Newf(
		failure.KindInvalidToken,
		"expected 2 or 4 fields, got %d", len(fields),
	)
}

func pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
