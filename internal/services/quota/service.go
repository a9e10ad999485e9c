package quota

import (
	"context"
	"errors"
	"time"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/enums"
	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("quota dependencies are not configured")
)

// UsageStore is the append-only record log behind the quota windows.
type UsageStore interface {
	CountInWindow(ctx context.Context, userID int64, kind enums.RequestKind, since time.Time) (int, error)
	Insert(ctx context.Context, record model.UsageRecord) error
}

type Config struct {
	TextPerDay  int
	ImagePerDay int
	Window      time.Duration
}

// Service answers "is this user under quota" and "record this usage" over
// independent per-kind rolling windows.
//
// Allowed and Record are deliberately two separate store calls: two
// near-simultaneous requests from the same user may both pass the check
// before either records. That check-then-act race is accepted behavior.
type Service struct {
	store UsageStore
	cfg   Config
	now   func() time.Time
}

func NewService(store UsageStore, cfg Config) *Service {
	if cfg.TextPerDay <= 0 {
		cfg.TextPerDay = 200
	}
	if cfg.ImagePerDay <= 0 {
		cfg.ImagePerDay = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}

	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Allowed reports whether the user is strictly under the per-kind limit
// within the trailing window.
func (s *Service) Allowed(ctx context.Context, userID int64, kind enums.RequestKind) (bool, error) {
	if userID <= 0 || !kind.Valid() {
		return false, ErrValidation
	}
	if s.store == nil {
		return false, ErrDependenciesNil
	}

	since := s.now().Add(-s.cfg.Window)
	count, err := s.store.CountInWindow(ctx, userID, kind, since)
	if err != nil {
		return false, err
	}

	return count < s.limitFor(kind), nil
}

// Record appends exactly one usage record at the current time.
func (s *Service) Record(ctx context.Context, userID int64, kind enums.RequestKind) error {
	if userID <= 0 || !kind.Valid() {
		return ErrValidation
	}
	if s.store == nil {
		return ErrDependenciesNil
	}

	return s.store.Insert(ctx, model.UsageRecord{
		UserID: userID,
		Kind:   kind,
		TS:     s.now().Unix(),
	})
}

func (s *Service) limitFor(kind enums.RequestKind) int {
	if kind == enums.RequestKindImage {
		return s.cfg.ImagePerDay
	}
	return s.cfg.TextPerDay
}
