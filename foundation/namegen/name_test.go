package namegen_test

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ardanlabs/namegen/foundation/namegen"
)

func Test_EncodeDecode(t *testing.T) {
	type table struct {
		name  string
		input string
		exp   string
	}

	tt := []table{
		{name: "basic", input: "shadow-edward", exp: "shadow-edward"},
		{name: "empty", input: "", exp: ""},
		{name: "exact", input: strings.Repeat("a", namegen.NameSize), exp: strings.Repeat("a", namegen.NameSize)},
		{name: "long", input: strings.Repeat("b", namegen.NameSize+10), exp: strings.Repeat("b", namegen.NameSize)},
		{name: "unicode", input: "nume-ăîș", exp: "nume-ăîș"},
		{name: "rune-boundary", input: strings.Repeat("a", namegen.NameSize-1) + "é", exp: strings.Repeat("a", namegen.NameSize-1)},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			n, err := namegen.EncodeName(tst.input)
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to encode the name: %s", tst.name, err)
			}

			got := namegen.DecodeName(n)
			if got != tst.exp {
				t.Logf("Test %s:\tgot: %q", tst.name, got)
				t.Logf("Test %s:\texp: %q", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get back the right name.", tst.name)
			}

			if !utf8.ValidString(got) {
				t.Fatalf("Test %s:\tShould get back valid utf8.", tst.name)
			}

			used := len(tst.exp)
			for i := used; i < namegen.NameSize; i++ {
				if n[i] != 0 {
					t.Fatalf("Test %s:\tShould be zero padded at byte %d.", tst.name, i)
				}
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_EncodeZeroByte(t *testing.T) {
	_, err := namegen.EncodeName("bad\x00name")
	if !errors.Is(err, namegen.ErrInvalidName) {
		t.Logf("got: %v", err)
		t.Logf("exp: %v", namegen.ErrInvalidName)
		t.Fatalf("Should reject a name with a zero byte.")
	}
}

func Test_EncodeInvalidUTF8(t *testing.T) {
	s := strings.Repeat("\x80", 70)

	n, err := namegen.EncodeName(s)
	if err != nil {
		t.Fatalf("Should be able to encode the bytes: %s", err)
	}

	if n.IsZero() {
		t.Fatalf("Should not store an empty name for invalid utf8.")
	}

	if got := len(n.String()); got != namegen.NameSize {
		t.Logf("got: %d", got)
		t.Logf("exp: %d", namegen.NameSize)
		t.Fatalf("Should cut the bytes at the buffer size.")
	}
}

func Test_DecodeTrailingZeros(t *testing.T) {
	var n namegen.Name
	copy(n[:], "ghost-42")

	if got := n.String(); got != "ghost-42" {
		t.Logf("got: %q", got)
		t.Logf("exp: %q", "ghost-42")
		t.Fatalf("Should trim the trailing zero bytes.")
	}

	if n.IsZero() {
		t.Fatalf("Should not report a set name as zero.")
	}

	if !(namegen.Name{}).IsZero() {
		t.Fatalf("Should report the empty name as zero.")
	}
}

func Test_Generate(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	re := regexp.MustCompile(`^[a-z]+-[0-9]{1,4}$`)

	for range 50 {
		name := namegen.Generate(r)
		if !re.MatchString(name) {
			t.Fatalf("Should generate a name of the form word-number: %q", name)
		}

		if _, err := namegen.EncodeName(name); err != nil {
			t.Fatalf("Should be able to encode a generated name: %s", err)
		}
	}
}
