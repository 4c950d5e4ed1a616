package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec() *Codec {
	return NewCodec("0123456789abcdef0123456789abcdef")
}

func TestCodec_MintAndVerify(t *testing.T) {
	codec := newTestCodec()

	token, tokenID, err := codec.Mint("usr-1234", KindAccess, true, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if tokenID == "" {
		t.Fatal("Mint() returned empty token ID")
	}

	claims, err := codec.Verify(token, KindAccess, false)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "usr-1234" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-1234")
	}
	if claims.ID != tokenID {
		t.Errorf("claims.ID = %q, want %q", claims.ID, tokenID)
	}
	if claims.Kind != KindAccess {
		t.Errorf("Kind = %q, want %q", claims.Kind, KindAccess)
	}
	if !claims.Fresh {
		t.Error("Fresh = false, want true")
	}
}

func TestCodec_MintUniqueTokenIDs(t *testing.T) {
	codec := newTestCodec()

	_, first, err := codec.Mint("usr-1234", KindAccess, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	_, second, err := codec.Mint("usr-1234", KindAccess, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if first == second {
		t.Error("two mints produced the same token ID")
	}
}

func TestCodec_VerifyExpired(t *testing.T) {
	codec := newTestCodec()

	token, _, err := codec.Mint("usr-1234", KindAccess, false, -time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := codec.Verify(token, KindAccess, false); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestCodec_VerifyWrongSecret(t *testing.T) {
	token, _, err := newTestCodec().Mint("usr-1234", KindAccess, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	other := NewCodec("ffffffffffffffffffffffffffffffff")
	if _, err := other.Verify(token, KindAccess, false); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify() error = %v, want ErrSignatureInvalid", err)
	}
}

func TestCodec_VerifyTamperedSignature(t *testing.T) {
	codec := newTestCodec()

	token, _, err := codec.Mint("usr-1234", KindAccess, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	// Flip one byte in the signature segment; header and claims stay intact.
	dot := strings.LastIndexByte(token, '.')
	tampered := []byte(token)
	if tampered[dot+1] == 'A' {
		tampered[dot+1] = 'B'
	} else {
		tampered[dot+1] = 'A'
	}

	if _, err := codec.Verify(string(tampered), KindAccess, false); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify() error = %v, want ErrSignatureInvalid", err)
	}
}

func TestCodec_VerifyWrongKind(t *testing.T) {
	codec := newTestCodec()

	token, _, err := codec.Mint("usr-1234", KindRefresh, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := codec.Verify(token, KindAccess, false); !errors.Is(err, ErrWrongKind) {
		t.Errorf("Verify() error = %v, want ErrWrongKind", err)
	}
}

func TestCodec_VerifyFreshnessRequired(t *testing.T) {
	codec := newTestCodec()

	stale, _, err := codec.Mint("usr-1234", KindAccess, false, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := codec.Verify(stale, KindAccess, true); !errors.Is(err, ErrNotFresh) {
		t.Errorf("Verify() error = %v, want ErrNotFresh", err)
	}

	fresh, _, err := codec.Mint("usr-1234", KindAccess, true, time.Minute)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := codec.Verify(fresh, KindAccess, true); err != nil {
		t.Errorf("Verify() error = %v, want nil for fresh token", err)
	}
}

func TestCodec_VerifyGarbage(t *testing.T) {
	codec := newTestCodec()

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(tokenString, KindAccess, false); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%q) error = %v, want ErrTokenInvalid", tokenString, err)
		}
	}
}

func TestCodec_MintRejectsBadInput(t *testing.T) {
	codec := newTestCodec()

	if _, _, err := codec.Mint("", KindAccess, false, time.Minute); err == nil {
		t.Error("Mint() with empty subject should fail")
	}
	if _, _, err := codec.Mint("usr-1234", TokenKind("session"), false, time.Minute); err == nil {
		t.Error("Mint() with unknown kind should fail")
	}
}
