package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAesRoundTrip(t *testing.T) {
	passwords := []string{"Sqlman@123#?456!", "root", "p", "一二三四五"}
	for _, pwd := range passwords {
		enc := AesEncryptECB(pwd)
		assert.NotEqual(t, pwd, enc)
		assert.Equal(t, pwd, AesDecryptECB(enc))
	}
}

func TestAesEmpty(t *testing.T) {
	assert.Equal(t, "", AesEncryptECB(""))
	assert.Equal(t, "", AesDecryptECB(""))
}

func TestAesDecryptGarbage(t *testing.T) {
	// non-hex input comes back untouched
	assert.Equal(t, "not-a-cipher", AesDecryptECB("not-a-cipher"))
}
