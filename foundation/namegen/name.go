package namegen

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"unicode/utf8"
)

// NameSize is the fixed number of bytes the program stores for a name.
const NameSize = 64

// Name is the on-chain representation of a display name.
type Name [NameSize]byte

// EncodeName converts the string into the zero padded fixed size buffer
// the program expects. A string longer than the buffer is cut at the last
// complete rune that fits. Bytes that never start a rune are cut at the
// buffer size.
func EncodeName(s string) (Name, error) {
	var n Name

	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return n, ErrInvalidName
	}

	b := []byte(s)
	if len(b) > NameSize {
		cut := NameSize
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		if cut == 0 {
			cut = NameSize
		}
		b = b[:cut]
	}

	copy(n[:], b)
	return n, nil
}

// DecodeName returns the string stored in the buffer with the trailing
// zero bytes removed.
func DecodeName(n Name) string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

// String implements the fmt.Stringer interface.
func (n Name) String() string {
	return DecodeName(n)
}

// IsZero reports whether no name is stored.
func (n Name) IsZero() bool {
	return n == Name{}
}

// =============================================================================

var words = []string{"shadow", "wolf", "storm", "drift", "ghost", "nova", "blade"}

// Generate produces a random display name of the form word-number.
func Generate(r *rand.Rand) string {
	w := words[r.IntN(len(words))]
	return fmt.Sprintf("%s-%d", w, r.IntN(10_000))
}
