package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	sealed, err := EncryptAES256GCM("translation-api-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "translation-api-secret", sealed)
	assert.True(t, IsEncrypted(sealed))

	plain, err := DecryptAES256GCM(sealed)
	require.NoError(t, err)
	assert.Equal(t, "translation-api-secret", plain)
}

func TestEncryptRequiresKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")
	_, err := EncryptAES256GCM("anything")
	assert.Error(t, err)

	t.Setenv("ENCRYPTION_KEY", "too-short")
	_, err = EncryptAES256GCM("anything")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "0123456789abcdef0123456789abcdef")

	_, err := DecryptAES256GCM("not base64 at all!!!")
	assert.Error(t, err)

	_, err = DecryptAES256GCM("c2hvcnQ=")
	assert.Error(t, err)
}

func TestIsEncrypted(t *testing.T) {
	assert.False(t, IsEncrypted(""))
	assert.False(t, IsEncrypted("plain text value"))
	assert.False(t, IsEncrypted("c2hvcnQ="))
}
