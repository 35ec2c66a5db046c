// Package export writes snapshots to files, optionally encrypted, and
// renders the discipline report PDF.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/akyairhashvil/ascetic/internal/models"
)

// Options controls the on-disk snapshot format.
type Options struct {
	EncryptOutput bool
	Passphrase    string
}

// ErrEncrypted is returned when reading an encrypted file without a
// passphrase.
var ErrEncrypted = errors.New("snapshot file is encrypted")

// WriteSnapshot marshals the snapshot to path, AES-GCM sealed when
// requested.
func WriteSnapshot(path string, snap models.Snapshot, opts Options) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if opts.EncryptOutput {
		payload, err = encryptData(payload, opts.Passphrase)
		if err != nil {
			return fmt.Errorf("encrypt snapshot: %w", err)
		}
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file, decrypting when it carries the
// encrypted envelope.
func ReadSnapshot(path string, passphrase string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if isEncrypted(data) {
		if passphrase == "" {
			return models.Snapshot{}, ErrEncrypted
		}
		data, err = decryptData(data, passphrase)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("decrypt snapshot: %w", err)
		}
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, nil
}
