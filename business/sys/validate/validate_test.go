package validate_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/namegen/business/sys/validate"
)

func Test_Check(t *testing.T) {
	type save struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	if err := validate.Check(save{Name: "drift-3"}); err != nil {
		t.Fatalf("Should accept a valid model: %s", err)
	}

	err := validate.Check(save{Name: strings.Repeat("x", 65)})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should reject a long name with field errors: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["name"]; !exists {
		t.Logf("got: %v", fields)
		t.Fatalf("Should report the json field name.")
	}
}

func Test_CheckPublicKey(t *testing.T) {
	if err := validate.CheckPublicKey("njCkgAPdDfewLAZmWZE1ckRDGAiPTwvWMouGGNCJkiR"); err != nil {
		t.Fatalf("Should accept a base58 key: %s", err)
	}

	if err := validate.CheckPublicKey("not-a-key"); err == nil {
		t.Fatalf("Should reject a bad key.")
	}
}
