package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mixmentor/mixmentor/logging"
	"github.com/mixmentor/mixmentor/store"
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// ValidateEmail reports whether s is an email-shaped identifier. The
// validated address is the partition key for every stored record, so
// the gate lives next to the resolver even though prompting for it is
// a presentation concern.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

// SanitizeFilename replaces everything but ASCII letters, digits,
// '_', '-' and '.' with underscores and truncates to maxLen.
func SanitizeFilename(s string, maxLen int) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// ResolvedSlot is the stable on-disk identity assigned to one piece
// of content for one user.
type ResolvedSlot struct {
	StoredPath    string
	StoredName    string
	Fingerprint   string
	ProjectNumber int
	IsNewProject  bool
}

// Resolver assigns stable storage slots keyed by (user,
// content-fingerprint). Re-uploading identical bytes lands in the
// same slot; different bytes under the same user allocate the next
// project number. The tie-break is strictly content-hash equality.
type Resolver struct {
	uploadsDir     string
	store          *store.JSONStore
	fingerprintLen int
	maxFilenameLen int
	logger         logging.Logger
}

// NewResolver creates a resolver writing audio into uploadsDir and
// consulting st for existing slots.
func NewResolver(uploadsDir string, st *store.JSONStore, fingerprintLen, maxFilenameLen int) *Resolver {
	if fingerprintLen <= 0 {
		fingerprintLen = 10
	}
	if maxFilenameLen <= 0 {
		maxFilenameLen = 64
	}
	return &Resolver{
		uploadsDir:     uploadsDir,
		store:          st,
		fingerprintLen: fingerprintLen,
		maxFilenameLen: maxFilenameLen,
		logger: logging.WithFields(logging.Fields{
			"component": "identity_resolver",
		}),
	}
}

// Fingerprint returns the truncated content hash of the raw bytes.
func (r *Resolver) Fingerprint(data []byte) string {
	sum := sha1.Sum(data)
	digest := hex.EncodeToString(sum[:])
	if r.fingerprintLen < len(digest) {
		return digest[:r.fingerprintLen]
	}
	return digest
}

// Resolve determines the stable slot for (userID, data) and writes
// the bytes there, replacing any prior content via temp-then-rename
// so a failed write never leaves a half-written file at the slot.
func (r *Resolver) Resolve(userID string, data []byte, ext string) (*ResolvedSlot, error) {
	if err := os.MkdirAll(r.uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	records := r.store.Load()
	slot := &ResolvedSlot{Fingerprint: r.Fingerprint(data)}

	rec, found := store.Find(records, userID, slot.Fingerprint)
	slot.IsNewProject = !found
	if found {
		// Reuse the assigned filename; the content at that path is
		// about to be replaced with identical bytes.
		if name := rec.Filename(); name != "" {
			slot.StoredName = name
			slot.ProjectNumber = rec.ProjectNumber()
		}
	}

	if slot.StoredName == "" {
		// Either new content, or a record that somehow lost its
		// filename: allocate the next slot for this user.
		slot.ProjectNumber = store.NextProjectNumber(records, userID)
		slot.StoredName = r.buildFilename(userID, slot.ProjectNumber, ext)
	}

	slot.StoredPath = filepath.Join(r.uploadsDir, slot.StoredName)
	if err := r.writeAtomic(slot.StoredPath, data); err != nil {
		return nil, fmt.Errorf("write audio slot: %w", err)
	}

	r.logger.Debug("slot resolved", logging.Fields{
		"user":           userID,
		"fingerprint":    slot.Fingerprint,
		"stored_name":    slot.StoredName,
		"project_number": slot.ProjectNumber,
		"new_project":    slot.IsNewProject,
	})

	return slot, nil
}

// buildFilename derives <sanitizedLocalPart>__project_<N><ext>.
func (r *Resolver) buildFilename(userID string, projectNumber int, ext string) string {
	local := userID
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	if local == "" {
		local = "anon"
	}
	prefix := SanitizeFilename(local, r.maxFilenameLen)

	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return fmt.Sprintf("%s__project_%d%s", prefix, projectNumber, ext)
}

func (r *Resolver) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
