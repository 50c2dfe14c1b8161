package security

import (
	"strings"
	"testing"

	"github.com/crmbase-app/crmbase-backend/pkg/config"
)

// Small parameters keep the KDF fast in tests.
var testCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", testCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword("s3cret", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := HashPassword("", testCfg); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same", testCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("same", testCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}
