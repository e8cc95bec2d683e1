package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !Verify("s3cret", hash) {
		t.Fatalf("expected hash to verify against original plaintext")
	}
	if Verify("wrong", hash) {
		t.Fatalf("expected mismatch for wrong plaintext")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	h2, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same plaintext should differ (salting)")
	}
	if !Verify("same-input", h1) || !Verify("same-input", h2) {
		t.Fatalf("both salted hashes must verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must not verify")
	}
	if Verify("anything", "") {
		t.Fatalf("empty hash must not verify")
	}
}
