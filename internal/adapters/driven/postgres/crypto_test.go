package postgres

import (
	"bytes"
	"errors"
	"testing"
)

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	key := []byte("01234567890123456789012345678901")

	encryptor, err := NewSecretEncryptor(key)
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	value := "sk_Zm9vYmFyYmF6cXV4"
	blob, err := encryptor.EncryptString(value)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}

	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != secretVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], secretVersion)
	}
	if bytes.Contains(blob, []byte(value)) {
		t.Error("blob contains the plaintext")
	}

	got, err := encryptor.DecryptString(blob)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if got != value {
		t.Errorf("round trip: got %q, want %q", got, value)
	}

	// Nonces are random: encrypting twice never yields the same blob.
	blob2, err := encryptor.EncryptString(value)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if bytes.Equal(blob, blob2) {
		t.Error("two encryptions produced identical blobs")
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	enc1, err := NewSecretEncryptor([]byte("01234567890123456789012345678901"))
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}
	enc2, err := NewSecretEncryptor([]byte("10987654321098765432109876543210"))
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}

	blob, err := enc1.EncryptString("sk_secret")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if _, err := enc2.DecryptString(blob); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretEncryptor_Validation(t *testing.T) {
	if _, err := NewSecretEncryptor([]byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}

	enc, err := NewSecretEncryptor([]byte("01234567890123456789012345678901"))
	if err != nil {
		t.Fatalf("NewSecretEncryptor: %v", err)
	}
	if _, err := enc.DecryptString([]byte{0x01, 0x02}); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("expected ErrInvalidBlobSize, got %v", err)
	}

	blob, err := enc.EncryptString("sk_secret")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	blob[0] = 0x7f
	if _, err := enc.DecryptString(blob); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}
