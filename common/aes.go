package common

import (
	"bytes"
	"crypto/aes"
	"encoding/hex"
	"strings"
)

const AES_KEY = "sqlman*4%8#9@6!0"

// AesEncryptECB encrypts a password for storage. On any cipher error the
// input is returned unchanged, so a malformed key never loses the value.
func AesEncryptECB(origin string) string {
	if origin == "" {
		return ""
	}
	block, err := aes.NewCipher([]byte(AES_KEY))
	if err != nil {
		return origin
	}
	bs := block.BlockSize()
	src := PKCS5Padding([]byte(origin), bs)
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Encrypt(out[i:i+bs], src[i:i+bs])
	}
	return strings.ToUpper(hex.EncodeToString(out))
}

func AesDecryptECB(encrypted string) string {
	if encrypted == "" {
		return ""
	}
	src, err := hex.DecodeString(encrypted)
	if err != nil {
		return encrypted
	}
	block, err := aes.NewCipher([]byte(AES_KEY))
	if err != nil {
		return encrypted
	}
	bs := block.BlockSize()
	if len(src) == 0 || len(src)%bs != 0 {
		return encrypted
	}
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += bs {
		block.Decrypt(out[i:i+bs], src[i:i+bs])
	}
	out = PKCS5UnPadding(out)
	return string(out)
}

func PKCS5Padding(ciphertext []byte, blockSize int) []byte {
	padding := blockSize - len(ciphertext)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(ciphertext, padtext...)
}

func PKCS5UnPadding(origin []byte) []byte {
	length := len(origin)
	unpadding := int(origin[length-1])
	if unpadding > length {
		return origin
	}
	return origin[:length-unpadding]
}
