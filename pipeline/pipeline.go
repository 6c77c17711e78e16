package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mixmentor/mixmentor/advisory"
	"github.com/mixmentor/mixmentor/analysis"
	"github.com/mixmentor/mixmentor/config"
	"github.com/mixmentor/mixmentor/decode"
	"github.com/mixmentor/mixmentor/identity"
	"github.com/mixmentor/mixmentor/logging"
	"github.com/mixmentor/mixmentor/store"
)

// Error kinds surfaced to the presentation layer. Both are
// user-visible and non-fatal: the interaction fails independently and
// the user may retry.
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrUnsupportedFile = errors.New("unsupported or corrupt audio file")
)

// Metadata is optional free-form context supplied with an upload.
type Metadata struct {
	Genre        string
	ProjectStage string
}

// Feedback is the structured follow-up a user can submit for a
// previously analyzed upload.
type Feedback struct {
	Purpose        string
	PurposeFree    string
	RatingScore    int // 1-10, 0 when unset
	PainPoints     []string
	PainPointsFree string
	ReferenceTrack string
	Relevant       string
	Improve        string
	Comments       string
}

// Report is returned to the caller after one analysis.
type Report struct {
	Metrics       *analysis.Metrics
	Headline      string
	Tips          []string
	Explanations  []string
	Fingerprint   string
	StoredName    string
	ProjectNumber int
	Created       bool // record created vs. updated
}

// Pipeline wires the resolver, decoder, extractor, advisor and record
// store into the strict analyze sequence: resolve identity, decode,
// extract, advise, upsert. One operation runs at a time per caller;
// there is no internal locking (last write wins across processes).
type Pipeline struct {
	cfg       *config.Config
	store     *store.JSONStore
	resolver  *identity.Resolver
	decoder   *decode.Decoder
	extractor *analysis.Extractor
	logger    logging.Logger
}

// New creates a pipeline from the given configuration (nil uses
// defaults). When JSON log output is configured the global logger is
// switched to the zap implementation.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.LogFormat == "json" {
		if zl, err := logging.NewZapLogger(); err == nil {
			logging.SetGlobalLogger(zl)
		}
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	st := store.NewJSONStore(cfg.RecordsPath())
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		resolver:  identity.NewResolver(cfg.UploadsDir, st, cfg.FingerprintLen, cfg.MaxFilenameLen),
		decoder:   decode.NewDecoder(),
		extractor: analysis.NewExtractor(),
		logger: logging.WithFields(logging.Fields{
			"component": "pipeline",
		}),
	}
}

// Store exposes the underlying record store (read access for callers
// that render history).
func (p *Pipeline) Store() *store.JSONStore {
	return p.store
}

// Touch records that a user passed the identity gate. The record
// carries no content fingerprint, so it always appends.
func (p *Pipeline) Touch(email string) error {
	if !identity.ValidateEmail(email) {
		return ErrInvalidEmail
	}
	_, err := p.store.Upsert(email, store.Record{})
	return err
}

// Analyze runs the full pipeline for one upload. Decoding and I/O
// failures surface as ErrUnsupportedFile and no record is written for
// the failed attempt; there are no retries.
func (p *Pipeline) Analyze(email, originalName string, data []byte, meta Metadata) (*Report, error) {
	if !identity.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedFile)
	}

	ext := filepath.Ext(originalName)
	if !decode.Supported(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	slot, err := p.resolver.Resolve(email, data, ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	audio, err := p.decoder.DecodeFile(slot.StoredPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	metrics, err := p.extractor.Extract(audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	advice := advisory.Advise(metrics)

	fields := store.Record{
		store.FieldFileHash:      slot.Fingerprint,
		store.FieldFilename:      slot.StoredName,
		store.FieldProjectNumber: slot.ProjectNumber,
		store.FieldDuration:      metrics.Duration,
		store.FieldLoudness:      metrics.LoudnessProxy,
		store.FieldPeak:          metrics.Peak,
		store.FieldCrestFactor:   metrics.CrestFactor,
		store.FieldCentroid:      metrics.SpectralCentroid,
		store.FieldDominantFreq:  metrics.DominantFrequency,
		store.FieldMainTip:       advice.Headline,
		store.FieldTips:          advice.JoinedTips(),
		store.FieldGenre:         meta.Genre,
		store.FieldProjectStage:  meta.ProjectStage,
	}

	created, err := p.store.Upsert(email, fields)
	if err != nil {
		return nil, fmt.Errorf("save analysis record: %w", err)
	}

	p.logger.Info("analysis recorded", logging.Fields{
		"user":           email,
		"fingerprint":    slot.Fingerprint,
		"project_number": slot.ProjectNumber,
		"created":        created,
	})

	return &Report{
		Metrics:       metrics,
		Headline:      advice.Headline,
		Tips:          advice.Tips,
		Explanations:  advice.Explanations,
		Fingerprint:   slot.Fingerprint,
		StoredName:    slot.StoredName,
		ProjectNumber: slot.ProjectNumber,
		Created:       created,
	}, nil
}

// SubmitFeedback merges feedback fields into the record identified by
// (email, fingerprint). The record is updated in place, never
// duplicated; fields the feedback does not mention survive the merge.
func (p *Pipeline) SubmitFeedback(email, fingerprint, filename string, fb Feedback) error {
	if !identity.ValidateEmail(email) {
		return ErrInvalidEmail
	}
	if fingerprint == "" {
		return fmt.Errorf("missing content fingerprint")
	}
	if fb.RatingScore != 0 && (fb.RatingScore < 1 || fb.RatingScore > 10) {
		return fmt.Errorf("self rating must be between 1 and 10, got %d", fb.RatingScore)
	}

	fields := store.Record{
		store.FieldFileHash:       fingerprint,
		store.FieldFilename:       filename,
		store.FieldPurpose:        fb.Purpose,
		store.FieldPurposeFree:    fb.PurposeFree,
		store.FieldPainPoints:     strings.Join(fb.PainPoints, "/"),
		store.FieldPainPointsFree: fb.PainPointsFree,
		store.FieldReference:      fb.ReferenceTrack,
		store.FieldRelevant:       fb.Relevant,
		store.FieldImprove:        fb.Improve,
		store.FieldComments:       fb.Comments,
	}
	if fb.RatingScore != 0 {
		fields[store.FieldSelfRating] = fb.RatingScore
	}

	_, err := p.store.Upsert(email, fields)
	return err
}
