package passphrase

import (
	"io"
	"testing"
)

func scripted(answers ...string) *Source {
	s := NewSource("")
	s.isTerminal = func() bool { return true }
	s.prompt = io.Discard
	s.read = func() ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
	return s
}

func TestSourcePrefersEnvironment(t *testing.T) {
	t.Setenv("NFI_TEST_PASS", "from-env")
	s := NewSource("NFI_TEST_PASS")
	s.isTerminal = func() bool { t.Fatal("terminal should not be consulted"); return false }
	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("unexpected passphrase %q", got)
	}
}

func TestSourceRejectsEmptyEnvironment(t *testing.T) {
	t.Setenv("NFI_TEST_PASS", "  ")
	if _, err := NewSource("NFI_TEST_PASS").Get(); err == nil {
		t.Fatal("expected empty passphrase to be rejected")
	}
}

func TestSourceWithoutTerminal(t *testing.T) {
	s := NewSource("")
	s.isTerminal = func() bool { return false }
	if _, err := s.Get(); err == nil {
		t.Fatal("expected error without a terminal")
	}
}

func TestSourceConfirmation(t *testing.T) {
	got, err := scripted("secret", "secret").WithConfirmation().Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "secret" {
		t.Fatalf("unexpected passphrase %q", got)
	}

	if _, err := scripted("secret", "other").WithConfirmation().Get(); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestSourceCachesValue(t *testing.T) {
	s := scripted("first")
	first, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := s.Get()
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Fatalf("value not cached: %q vs %q", first, second)
	}
}
