// Package password hashes account credentials with Argon2id in the standard
// PHC string format, so stored hashes stay verifiable if the cost parameters
// change later.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// params carries the Argon2id cost settings a hash was derived with.
type params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// Tuned for interactive logins.
var defaultParams = params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
}

const saltLen = 16

var errMalformed = errors.New("malformed password hash")

// Hash derives an Argon2id hash of the plain password with a fresh salt.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	return encode(defaultParams, salt, derive(plain, defaultParams, salt)), nil
}

// Verify reports whether plain matches the encoded hash. Malformed encodings
// verify as false rather than erroring, so callers treat them like a wrong
// password.
func Verify(plain, encoded string) bool {
	p, salt, want, err := decode(encoded)
	if err != nil {
		return false
	}
	got := derive(plain, p, salt)
	return subtle.ConstantTimeCompare(want, got) == 1
}

func derive(plain string, p params, salt []byte) []byte {
	return argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func encode(p params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decode(encoded string) (params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return params{}, nil, nil, errMalformed
	}

	var p params
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil || n != 3 {
		return params{}, nil, nil, errMalformed
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params{}, nil, nil, errMalformed
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params{}, nil, nil, errMalformed
	}

	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
