package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/ports/adapter"
	"mlm-membership-platform/internal/infra/security"

	"github.com/oklog/ulid/v2"
)

// Ensure compile-time conformance
var _ adapter.DocumentStore = (*EncryptedDiskStore)(nil)

// EncryptedDiskStore keeps KYC documents on local disk, AES-GCM encrypted.
// The returned reference is the generated file name; a ULID prefix keeps the
// directory listing in submission order.
type EncryptedDiskStore struct {
	dir string
	enc *security.EncryptionService
}

func NewEncryptedDiskStore(dir string, enc *security.EncryptionService) (*EncryptedDiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &EncryptedDiskStore{dir: dir, enc: enc}, nil
}

func (s *EncryptedDiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrInvalidArgument
	}
	ct, err := s.enc.Encrypt(data)
	if err != nil {
		return "", err
	}
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	ref := fmt.Sprintf("%s-%s.enc", id.String(), name)
	if err := os.WriteFile(filepath.Join(s.dir, ref), []byte(ct), 0o640); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return ref, nil
}

func (s *EncryptedDiskStore) Load(ctx context.Context, ref string) ([]byte, error) {
	// Refs come from our own database rows, but never follow a path out of
	// the store directory.
	if filepath.Base(ref) != ref {
		return nil, domain.ErrInvalidArgument
	}
	b, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return s.enc.Decrypt(string(b))
}
