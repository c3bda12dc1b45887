package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/rs/zerolog"

	"codemint/internal/config"
	"codemint/internal/ids"
	"codemint/internal/models"
	"codemint/internal/render"
	"codemint/internal/repository"
)

var (
	// ErrValidation marks caller mistakes: missing name, bad quantity.
	ErrValidation = errors.New("invalid input")

	// ErrDatabase wraps record-store failures. Handlers report it as a
	// generic database error; the underlying cause stays in the logs.
	ErrDatabase = errors.New("database error")
)

// CodeRecords is the slice of the repository the pipeline needs.
type CodeRecords interface {
	Insert(ctx context.Context, kind models.CodeKind, name, uniqueID, imagePath string) error
	Lookup(ctx context.Context, uniqueID string) (models.CodeRecord, error)
	List(ctx context.Context, kind models.CodeKind, limit, offset int) ([]models.CodeRecord, error)
}

// Uploader is the slice of the object store the pipeline needs.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket, key string) error
}

type GenerateInput struct {
	Kind     models.CodeKind
	Name     string
	Quantity int
}

type GeneratedUnit struct {
	UniqueID string
	URL      string
}

type GenerateResult struct {
	// BatchID groups the units of a quantity > 1 request. Empty for
	// single-unit generation.
	BatchID string
	Units   []GeneratedUnit
}

// GenerateService runs the id -> render -> upload -> insert pipeline.
type GenerateService struct {
	renderer render.Renderer
	store    Uploader
	records  CodeRecords
	cfg      config.StorageConfig
	log      zerolog.Logger
}

func NewGenerateService(renderer render.Renderer, store Uploader, records CodeRecords, cfg config.StorageConfig, log zerolog.Logger) *GenerateService {
	return &GenerateService{
		renderer: renderer,
		store:    store,
		records:  records,
		cfg:      cfg,
		log:      log,
	}
}

// Generate produces Quantity codes of the requested kind. The four
// pipeline steps run strictly in order per unit with no retries: a
// render failure uploads and persists nothing, and an upload failure
// must never be followed by a database insert. An insert failure leaves
// the already-uploaded object behind unless compensation is enabled.
func (s *GenerateService) Generate(ctx context.Context, input GenerateInput) (GenerateResult, error) {
	if err := validate(input); err != nil {
		return GenerateResult{}, err
	}

	result := GenerateResult{}
	if input.Quantity > 1 {
		result.BatchID = ids.NewBatch()
	}

	for i := 0; i < input.Quantity; i++ {
		unit, err := s.generateOne(ctx, input)
		if err != nil {
			return GenerateResult{}, err
		}
		result.Units = append(result.Units, unit)
	}

	s.log.Info().
		Str("kind", string(input.Kind)).
		Str("name", input.Name).
		Int("quantity", input.Quantity).
		Str("batch_id", result.BatchID).
		Msg("codes generated")

	return result, nil
}

func (s *GenerateService) generateOne(ctx context.Context, input GenerateInput) (GeneratedUnit, error) {
	uniqueID := ids.NewNumeric()

	image, err := s.renderer.Render(input.Kind, payloadFor(input.Kind, input.Name, uniqueID))
	if err != nil {
		return GeneratedUnit{}, fmt.Errorf("render %s: %w", input.Kind, err)
	}

	bucket := s.bucketFor(input.Kind)
	key := path.Join(s.folderFor(input.Kind), uniqueID+".png")

	url, err := s.store.Upload(ctx, bucket, key, image.Bytes, image.ContentType)
	if err != nil {
		// Nothing reached storage; no row may reference this URL.
		return GeneratedUnit{}, fmt.Errorf("upload %s: %w", input.Kind, err)
	}

	if err := s.records.Insert(ctx, input.Kind, input.Name, uniqueID, url); err != nil {
		s.log.Error().Err(err).
			Str("unique_id", uniqueID).
			Str("object_key", key).
			Msg("record insert failed after upload")
		s.compensate(ctx, bucket, key)
		return GeneratedUnit{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return GeneratedUnit{UniqueID: uniqueID, URL: url}, nil
}

// Scan resolves a unique id back to its record, via the cache when one
// is configured.
func (s *GenerateService) Scan(ctx context.Context, uniqueID string) (models.CodeRecord, error) {
	if uniqueID == "" {
		return models.CodeRecord{}, fmt.Errorf("%w: unique_id is required", ErrValidation)
	}

	record, err := s.records.Lookup(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return models.CodeRecord{}, err
		}
		return models.CodeRecord{}, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return record, nil
}

// ListRecent returns the newest records of a kind.
func (s *GenerateService) ListRecent(ctx context.Context, kind models.CodeKind, limit, offset int) ([]models.CodeRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.records.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return records, nil
}

func (s *GenerateService) compensate(ctx context.Context, bucket, key string) {
	if !s.cfg.CompensateOnDBError {
		return
	}
	if err := s.store.Remove(ctx, bucket, key); err != nil {
		s.log.Warn().Err(err).
			Str("object_key", key).
			Msg("compensating delete failed, object orphaned")
	}
}

func (s *GenerateService) bucketFor(kind models.CodeKind) string {
	if kind == models.CodeKindQR {
		return s.cfg.BucketQR
	}
	return s.cfg.BucketBarcode
}

func (s *GenerateService) folderFor(kind models.CodeKind) string {
	if kind == models.CodeKindQR {
		return s.cfg.FolderQR
	}
	return s.cfg.FolderBarcode
}

// payloadFor picks what gets encoded into the symbol. EAN-13 only
// accepts fixed-width digits, so barcodes carry the numeric id itself;
// QR codes carry the name alongside it.
func payloadFor(kind models.CodeKind, name, uniqueID string) string {
	if kind == models.CodeKindBarcode {
		return uniqueID
	}
	return fmt.Sprintf("%s-%s", name, uniqueID)
}

func validate(input GenerateInput) error {
	if !input.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, input.Kind)
	}
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return nil
}
