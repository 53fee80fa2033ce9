package namegen_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/namegen/foundation/namegen"
)

func Test_IDLDiscriminators(t *testing.T) {
	v, err := namegen.LoadIDL()
	if err != nil {
		t.Fatalf("Should be able to load the embedded idl: %s", err)
	}

	names := []string{
		namegen.InstructionInitUser,
		namegen.InstructionSetName,
		namegen.InstructionClearName,
	}

	for _, name := range names {
		got, err := v.InstructionDiscriminator(name)
		if err != nil {
			t.Fatalf("Should find instruction %s: %s", name, err)
		}

		exp := namegen.SighashInstruction(name)
		if got != exp {
			t.Logf("got: %v", got)
			t.Logf("exp: %v", exp)
			t.Fatalf("Should have the anchor discriminator for %s.", name)
		}
	}

	got, err := v.AccountDiscriminator(namegen.AccountUserData)
	if err != nil {
		t.Fatalf("Should find the user data account: %s", err)
	}

	if exp := namegen.SighashAccount(namegen.AccountUserData); got != exp {
		t.Logf("got: %v", got)
		t.Logf("exp: %v", exp)
		t.Fatalf("Should have the anchor discriminator for the user data account.")
	}
}

func Test_IDLKnownValues(t *testing.T) {
	exp := namegen.Discriminator{14, 51, 68, 159, 237, 78, 158, 102}
	if got := namegen.SighashInstruction("init_user"); got != exp {
		t.Logf("got: %v", got)
		t.Logf("exp: %v", exp)
		t.Fatalf("Should compute the init_user discriminator.")
	}

	v, err := namegen.LoadIDL()
	if err != nil {
		t.Fatalf("Should be able to load the embedded idl: %s", err)
	}

	if v.Address != "njCkgAPdDfewLAZmWZE1ckRDGAiPTwvWMouGGNCJkiR" {
		t.Fatalf("Should carry the program address: %s", v.Address)
	}

	msg, exists := v.ErrorMessage(6000)
	if !exists || msg == "" {
		t.Fatalf("Should carry the not owner error message.")
	}
}

func Test_IDLUnknown(t *testing.T) {
	v, err := namegen.LoadIDL()
	if err != nil {
		t.Fatalf("Should be able to load the embedded idl: %s", err)
	}

	if _, err := v.InstructionDiscriminator("transfer"); !errors.Is(err, namegen.ErrUnknownInstruction) {
		t.Fatalf("Should reject an unknown instruction: %v", err)
	}

	if _, err := v.AccountDiscriminator("Vault"); !errors.Is(err, namegen.ErrUnknownAccount) {
		t.Fatalf("Should reject an unknown account: %v", err)
	}
}

func Test_ParseIDLBadDiscriminator(t *testing.T) {
	doc := `{"address":"x","instructions":[{"name":"a","discriminator":[1,2,3],"accounts":[],"args":[]}]}`

	if _, err := namegen.ParseIDL([]byte(doc)); err == nil {
		t.Fatalf("Should reject a short discriminator.")
	}
}
