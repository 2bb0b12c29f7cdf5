package uniuri

import (
	"crypto/rand"
)

const (
	// StdLen is the length of token ids, about 95 bits of entropy.
	StdLen = 16
	// PasswordLen is the length of generated temporary passwords.
	PasswordLen = 12
)

// StdChars is the alphabet of generated strings.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals

// New returns a random string of StdLen characters.
func New() string {
	return NewLenChars(StdLen, StdChars)
}

// Password returns a random temporary password.
func Password() string {
	return NewLenChars(PasswordLen, StdChars)
}

// NewLenChars returns a random string of length characters drawn from chars
// (2 to 256 characters). Bytes that would bias the modulo are rejected.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 { //nolint:mnd
		panic("uniuri: wrong charset length for NewLenChars")
	}

	limit := 256 - (256 % clen) //nolint:mnd
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) >= limit {
				continue
			}

			out = append(out, chars[int(rb)%clen])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
