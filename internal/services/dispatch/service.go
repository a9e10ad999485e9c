package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/enums"
	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
)

var ErrDependenciesNil = errors.New("dispatch dependencies are not configured")

const (
	textLimitNotice  = "⚠️ Text conversion rate limit reached for today."
	imageLimitNotice = "⚠️ Image conversion rate limit reached for today."
	photoFailNotice  = "❌ Failed to process the image. Try a smaller image."
	imageCaption     = "Here is your ASCII art (image)"

	// inlinePlaceholder is converted when an inline query arrives empty.
	inlinePlaceholder = "ascii"
)

// Messenger is the outbound side of the messaging platform.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, mono bool) error
	SendPhoto(ctx context.Context, chatID int64, filePath, caption string) error
	AnswerInlineQuery(ctx context.Context, queryID string, results []InlineResult) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// QuotaService gates conversions per (user, kind).
type QuotaService interface {
	Allowed(ctx context.Context, userID int64, kind enums.RequestKind) (bool, error)
	Record(ctx context.Context, userID int64, kind enums.RequestKind) error
}

// Converter is the pure transform set.
type Converter interface {
	Banner(text string) string
	ImageToText(imageBytes []byte) (string, error)
	RasterizeToFile(text string) (string, error)
	Font() string
}

// BannerCache is an optional read-through cache for rendered banners.
type BannerCache interface {
	Get(ctx context.Context, font, text string) (string, bool, error)
	Set(ctx context.Context, font, text, banner string) error
}

// InlineResult is one textual inline answer item.
type InlineResult struct {
	ID          string
	Title       string
	Description string
	MessageText string
}

type Dependencies struct {
	Messenger   Messenger
	Quota       QuotaService
	Converter   Converter
	BannerCache BannerCache
	Logger      *zap.Logger
}

type Config struct {
	// TextThreshold is the inclusive cutoff for inline text replies; longer
	// output is rendered to an image because the messaging transport caps
	// message length.
	TextThreshold int
}

// Service routes one classified inbound update through quota, conversion and
// reply-modality selection. Invocations are synchronous and independent; any
// concurrency comes from the HTTP server calling HandleUpdate in parallel.
type Service struct {
	messenger Messenger
	quota     QuotaService
	converter Converter
	cache     BannerCache
	logger    *zap.Logger
	cfg       Config
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.TextThreshold <= 0 {
		cfg.TextThreshold = 3500
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		messenger: deps.Messenger,
		quota:     deps.Quota,
		converter: deps.Converter,
		cache:     deps.BannerCache,
		logger:    deps.Logger,
		cfg:       cfg,
	}
}

// HandleUpdate performs exactly one of: command handling, text flow, photo
// flow, inline flow, or a silent ignore. Photo-flow faults are degraded to a
// user-facing notice; anything else surfaces to the caller.
func (s *Service) HandleUpdate(ctx context.Context, upd model.Update) error {
	if s.messenger == nil || s.quota == nil || s.converter == nil {
		return ErrDependenciesNil
	}

	switch upd.Kind {
	case model.UpdateMessageText:
		upd.Text = strings.TrimSpace(upd.Text)
		if strings.HasPrefix(upd.Text, "/") {
			return s.handleCommand(ctx, upd)
		}
		return s.handleText(ctx, upd)
	case model.UpdateMessagePhoto:
		return s.handlePhoto(ctx, upd)
	case model.UpdateInlineQuery:
		return s.handleInline(ctx, upd)
	case model.UpdateEdited:
		return nil
	default:
		s.logger.Info("ignoring unrecognized update shape",
			zap.String("kind", string(upd.Kind)),
			zap.Int64("user_id", upd.UserID),
		)
		return nil
	}
}

func (s *Service) handleText(ctx context.Context, upd model.Update) error {
	ok, err := s.quota.Allowed(ctx, upd.UserID, enums.RequestKindText)
	if err != nil {
		return fmt.Errorf("check text quota: %w", err)
	}
	if !ok {
		s.send(ctx, upd.ChatID, textLimitNotice, false)
		return nil
	}

	if err := s.quota.Record(ctx, upd.UserID, enums.RequestKindText); err != nil {
		return fmt.Errorf("record text usage: %w", err)
	}

	return s.deliver(ctx, upd.ChatID, s.renderBanner(ctx, upd.Text))
}

func (s *Service) handlePhoto(ctx context.Context, upd model.Update) error {
	ok, err := s.quota.Allowed(ctx, upd.UserID, enums.RequestKindImage)
	if err != nil {
		return fmt.Errorf("check image quota: %w", err)
	}
	if !ok {
		s.send(ctx, upd.ChatID, imageLimitNotice, false)
		return nil
	}

	// Usage is recorded before the download is attempted: a failed download
	// still consumes quota.
	if err := s.quota.Record(ctx, upd.UserID, enums.RequestKindImage); err != nil {
		return fmt.Errorf("record image usage: %w", err)
	}

	imageBytes, err := s.messenger.DownloadFile(ctx, upd.PhotoFileID)
	if err != nil {
		s.logger.Warn("photo download failed", zap.Error(err), zap.Int64("user_id", upd.UserID))
		s.send(ctx, upd.ChatID, photoFailNotice, false)
		return nil
	}

	art, err := s.converter.ImageToText(imageBytes)
	if err != nil {
		s.logger.Warn("photo conversion failed", zap.Error(err), zap.Int64("user_id", upd.UserID))
		s.send(ctx, upd.ChatID, photoFailNotice, false)
		return nil
	}

	if err := s.deliver(ctx, upd.ChatID, art); err != nil {
		s.logger.Warn("photo reply failed", zap.Error(err), zap.Int64("user_id", upd.UserID))
		s.send(ctx, upd.ChatID, photoFailNotice, false)
	}
	return nil
}

func (s *Service) handleInline(ctx context.Context, upd model.Update) error {
	// inline queries share the text quota pool
	ok, err := s.quota.Allowed(ctx, upd.UserID, enums.RequestKindText)
	if err != nil {
		return fmt.Errorf("check inline quota: %w", err)
	}
	if !ok {
		// the protocol expects an answer either way; exhausted quota means
		// zero results, not an error
		return s.answerInline(ctx, upd.QueryID, nil)
	}

	if err := s.quota.Record(ctx, upd.UserID, enums.RequestKindText); err != nil {
		return fmt.Errorf("record inline usage: %w", err)
	}

	query := strings.TrimSpace(upd.Query)
	if query == "" {
		query = inlinePlaceholder
	}

	results := []InlineResult{{
		ID:          "1",
		Title:       "ASCII",
		Description: "Convert text to ASCII art",
		MessageText: s.renderBanner(ctx, query),
	}}

	return s.answerInline(ctx, upd.QueryID, results)
}

// deliver picks the reply modality: output at or under the threshold goes out
// as monospace text, anything longer is rasterized and sent as a photo.
func (s *Service) deliver(ctx context.Context, chatID int64, art string) error {
	if len(art) <= s.cfg.TextThreshold {
		s.send(ctx, chatID, art, true)
		return nil
	}

	path, err := s.converter.RasterizeToFile(art)
	if err != nil {
		return fmt.Errorf("rasterize oversized output: %w", err)
	}

	if err := s.messenger.SendPhoto(ctx, chatID, path, imageCaption); err != nil {
		s.logger.Warn("send photo failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
	return nil
}

// renderBanner converts text through the read-through cache. Cache faults
// degrade to a plain render.
func (s *Service) renderBanner(ctx context.Context, text string) string {
	if s.cache == nil {
		return s.converter.Banner(text)
	}

	font := s.converter.Font()
	if banner, found, err := s.cache.Get(ctx, font, text); err == nil && found {
		return banner
	} else if err != nil {
		s.logger.Warn("banner cache read failed", zap.Error(err))
	}

	banner := s.converter.Banner(text)
	if err := s.cache.Set(ctx, font, text, banner); err != nil {
		s.logger.Warn("banner cache write failed", zap.Error(err))
	}
	return banner
}

// send reports a failed delivery once and drops it; sends are never retried.
func (s *Service) send(ctx context.Context, chatID int64, text string, mono bool) {
	if err := s.messenger.SendText(ctx, chatID, text, mono); err != nil {
		s.logger.Warn("send message failed", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (s *Service) answerInline(ctx context.Context, queryID string, results []InlineResult) error {
	if err := s.messenger.AnswerInlineQuery(ctx, queryID, results); err != nil {
		s.logger.Warn("answer inline query failed", zap.Error(err), zap.String("query_id", queryID))
	}
	return nil
}
