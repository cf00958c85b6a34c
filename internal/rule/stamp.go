package rule

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okra-platform/ddgen/internal/emitter"
)

// StampFile records the inputs of the last successful generation, relative
// to the output directory.
const StampFile = ".ddgen-stamp.json"

// Stamp is the persisted record of a successful generation.
type Stamp struct {
	// InputsHash covers document paths, contents and the backend tag
	InputsHash string `json:"inputs_hash"`

	// Outputs are the artifacts predicted for those inputs
	Outputs []string `json:"outputs"`

	// GeneratedAt is informational only
	GeneratedAt time.Time `json:"generated_at"`
}

// HashInputs computes a content hash over the documents of a job. Every
// component is length-prefixed so that concatenations cannot collide.
func HashInputs(docs []emitter.Document, backend string) string {
	h := sha256.New()
	writeField := func(b []byte) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(b)))
		h.Write(n[:])
		h.Write(b)
	}

	writeField([]byte(backend))
	for _, doc := range docs {
		writeField([]byte(doc.Path))
		writeField(doc.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// errCorruptStamp marks a stamp file that exists but cannot be decoded.
var errCorruptStamp = errors.New("corrupt stamp")

// readStamp loads the stamp in dir. A missing stamp is not an error.
func readStamp(dir string) (*Stamp, error) {
	data, err := os.ReadFile(filepath.Join(dir, StampFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stamp: %w", err)
	}

	var stamp Stamp
	if err := json.Unmarshal(data, &stamp); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptStamp, err)
	}
	return &stamp, nil
}

// writeStamp replaces the stamp in dir atomically, so an interrupted write
// never leaves a truncated stamp behind.
func writeStamp(dir string, stamp *Stamp) error {
	data, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stamp: %w", err)
	}

	tmp, err := os.CreateTemp(dir, StampFile+".*")
	if err != nil {
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, StampFile)); err != nil {
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	return nil
}
