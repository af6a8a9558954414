package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	token := "EAABsbCS1iHgBO7page-token@with-secret"

	encrypted, err := Encrypt([]byte(token), key)
	assert.NoError(t, err)
	assert.NotEqual(t, token, encrypted)

	decrypted, err := Decrypt(encrypted, key)
	assert.NoError(t, err)
	assert.Equal(t, token, decrypted)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	other := []byte("ffffffffffffffffffffffffffffffff")

	encrypted, err := Encrypt([]byte("secret"), key)
	assert.NoError(t, err)

	_, err = Decrypt(encrypted, other)
	assert.Error(t, err)
}

func TestDecryptGarbageFails(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	_, err := Decrypt("bm90IGEgY2lwaGVydGV4dA==", key)
	assert.Error(t, err)
}
