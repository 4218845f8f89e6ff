package filecrypt

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/fernet/fernet-go"
)

const (
	// fernetOverhead is version (1) + timestamp (8) + IV (16) + HMAC (32)
	fernetOverhead = 1 + 8 + 16 + sha256.Size
	fernetBlock    = 16
	fernetVersion  = 0x80
)

// fernetCodec reads and writes Fernet tokens. The 32-byte key is used as
// is: the first half signs, the second half encrypts.
type fernetCodec struct {
	key *fernet.Key
}

func newFernetCodec(key []byte) *fernetCodec {
	var k fernet.Key
	copy(k[:], key)
	return &fernetCodec{key: &k}
}

func (c *fernetCodec) seal(plaintext []byte) ([]byte, error) {
	return fernet.EncryptAndSign(plaintext, c.key)
}

// open verifies and decrypts a token. Tokens must use canonical base64 so
// that every single-byte change is rejected. Tokens never expire.
func (c *fernetCodec) open(token []byte) ([]byte, error) {
	raw, err := base64.URLEncoding.Strict().DecodeString(string(token))
	if err != nil {
		return nil, NewAuthenticationError("")
	}
	if len(raw) < fernetOverhead+fernetBlock || (len(raw)-fernetOverhead)%fernetBlock != 0 || raw[0] != fernetVersion {
		return nil, NewAuthenticationError("")
	}

	plaintext := fernet.VerifyAndDecrypt(token, 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return nil, NewAuthenticationError("")
	}
	return plaintext, nil
}
