package jobs

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"codemint/internal/config"
	"codemint/internal/models"
)

type sweepStore interface {
	ListOlderThan(ctx context.Context, bucket, prefix string, cutoff time.Time) ([]string, error)
	Remove(ctx context.Context, bucket, key string) error
}

type recordChecker interface {
	Exists(ctx context.Context, kind models.CodeKind, uniqueID string) (bool, error)
}

// Sweeper removes orphaned objects: uploads whose follow-up database
// insert failed leave a blob with no row behind. It only touches
// objects older than the configured age so in-flight requests are
// never raced.
type Sweeper struct {
	cron    *cron.Cron
	store   sweepStore
	records recordChecker
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewSweeper(store sweepStore, records recordChecker, cfg *config.AppConfig, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		records: records,
		cfg:     cfg,
		log:     log,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.cfg.Sweeper.MaxAge)

	s.sweepKind(ctx, models.CodeKindBarcode, s.cfg.Storage.BucketBarcode, s.cfg.Storage.FolderBarcode, cutoff)
	s.sweepKind(ctx, models.CodeKindQR, s.cfg.Storage.BucketQR, s.cfg.Storage.FolderQR, cutoff)
}

func (s *Sweeper) sweepKind(ctx context.Context, kind models.CodeKind, bucket, folder string, cutoff time.Time) {
	keys, err := s.store.ListOlderThan(ctx, bucket, folder+"/", cutoff)
	if err != nil {
		s.log.Error().Err(err).Str("bucket", bucket).Msg("orphan sweep list failed")
		return
	}

	removed := 0
	for _, key := range keys {
		uniqueID := strings.TrimSuffix(path.Base(key), ".png")

		exists, err := s.records.Exists(ctx, kind, uniqueID)
		if err != nil {
			s.log.Error().Err(err).Str("unique_id", uniqueID).Msg("orphan sweep lookup failed")
			continue
		}
		if exists {
			continue
		}

		if err := s.store.Remove(ctx, bucket, key); err != nil {
			s.log.Error().Err(err).Str("object_key", key).Msg("orphan sweep remove failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info().
			Str("bucket", bucket).
			Int("removed", removed).
			Msg("orphaned objects removed")
	}
}
