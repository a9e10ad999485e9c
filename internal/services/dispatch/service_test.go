package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/enums"
	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
	"github.com/Mohammed137/ascii-master-bot/internal/services/ascii"
	"github.com/Mohammed137/ascii-master-bot/internal/services/quota"
)

type sentText struct {
	ChatID int64
	Text   string
	Mono   bool
}

type sentPhoto struct {
	ChatID   int64
	FilePath string
	Caption  string
}

type inlineAnswer struct {
	QueryID string
	Results []InlineResult
}

type fakeMessenger struct {
	texts    []sentText
	photos   []sentPhoto
	inline   []inlineAnswer
	download []byte

	downloadErr error
	sendErr     error
}

func (m *fakeMessenger) SendText(_ context.Context, chatID int64, text string, mono bool) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.texts = append(m.texts, sentText{ChatID: chatID, Text: text, Mono: mono})
	return nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, chatID int64, filePath, caption string) error {
	m.photos = append(m.photos, sentPhoto{ChatID: chatID, FilePath: filePath, Caption: caption})
	return nil
}

func (m *fakeMessenger) AnswerInlineQuery(_ context.Context, queryID string, results []InlineResult) error {
	m.inline = append(m.inline, inlineAnswer{QueryID: queryID, Results: results})
	return nil
}

func (m *fakeMessenger) DownloadFile(_ context.Context, _ string) ([]byte, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return m.download, nil
}

type memoryUsageStore struct {
	records []model.UsageRecord
}

func (s *memoryUsageStore) CountInWindow(_ context.Context, userID int64, kind enums.RequestKind, since time.Time) (int, error) {
	count := 0
	for _, rec := range s.records {
		if rec.UserID == userID && rec.Kind == kind && rec.TS > since.Unix() {
			count++
		}
	}
	return count, nil
}

func (s *memoryUsageStore) Insert(_ context.Context, record model.UsageRecord) error {
	s.records = append(s.records, record)
	return nil
}

type fakeConverter struct {
	bannerCalls []string
	bannerOut   string
	imageOut    string
	imageErr    error
	rasterPath  string
	rasterErr   error
}

func (f *fakeConverter) Banner(text string) string {
	f.bannerCalls = append(f.bannerCalls, text)
	if f.bannerOut != "" {
		return f.bannerOut
	}
	return "banner(" + text + ")"
}

func (f *fakeConverter) ImageToText(_ []byte) (string, error) {
	if f.imageErr != nil {
		return "", f.imageErr
	}
	if f.imageOut != "" {
		return f.imageOut, nil
	}
	return "@@@\n...", nil
}

func (f *fakeConverter) RasterizeToFile(_ string) (string, error) {
	if f.rasterErr != nil {
		return "", f.rasterErr
	}
	if f.rasterPath != "" {
		return f.rasterPath, nil
	}
	return "cache/ascii_test.png", nil
}

func (f *fakeConverter) Font() string { return "standard" }

func newTestService(t *testing.T, store *memoryUsageStore, messenger *fakeMessenger, conv Converter, cfg Config) *Service {
	t.Helper()

	if conv == nil {
		conv = &fakeConverter{}
	}
	quotaService := quota.NewService(store, quota.Config{
		TextPerDay:  200,
		ImagePerDay: 5,
		Window:      24 * time.Hour,
	})

	return NewService(Dependencies{
		Messenger: messenger,
		Quota:     quotaService,
		Converter: conv,
	}, cfg)
}

func textUpdate(userID, chatID int64, text string) model.Update {
	return model.Update{Kind: model.UpdateMessageText, UserID: userID, ChatID: chatID, Text: text}
}

func TestTextFlowRecordsUsageAndRepliesWithBanner(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{}
	conv := ascii.NewConverter(ascii.Config{Font: "standard", SampleWidth: 80, CacheDir: t.TempDir()})
	service := newTestService(t, store, messenger, conv, Config{TextThreshold: 3500})

	if err := service.HandleUpdate(context.Background(), textUpdate(1, 10, "hi")); err != nil {
		t.Fatalf("handle text update: %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("expected exactly one usage record, got %d", len(store.records))
	}
	if store.records[0].Kind != enums.RequestKindText {
		t.Fatalf("unexpected record kind: %s", store.records[0].Kind)
	}
	if len(messenger.texts) != 1 {
		t.Fatalf("expected one text reply, got %d", len(messenger.texts))
	}
	reply := messenger.texts[0]
	if !reply.Mono {
		t.Fatalf("banner reply must use the monospace hint")
	}
	if strings.TrimSpace(reply.Text) == "" {
		t.Fatalf("banner reply is empty")
	}
	if len(messenger.photos) != 0 {
		t.Fatalf("short banner must not fall back to an image")
	}
}

func TestTextQuotaExceededSendsNoticeWithoutRecording(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{}
	service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

	now := time.Now().Unix()
	for i := 0; i < 200; i++ {
		store.records = append(store.records, model.UsageRecord{UserID: 1, Kind: enums.RequestKindText, TS: now})
	}

	if err := service.HandleUpdate(context.Background(), textUpdate(1, 10, "hi")); err != nil {
		t.Fatalf("handle text update: %v", err)
	}

	if len(store.records) != 200 {
		t.Fatalf("denied attempt must not record usage: got %d records", len(store.records))
	}
	if len(messenger.texts) != 1 || messenger.texts[0].Text != textLimitNotice {
		t.Fatalf("expected quota notice, got %+v", messenger.texts)
	}
}

func TestCommandRoutingWinsOverTextFlowRegardlessOfQuota(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{}
	service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

	// exhausted text quota must not matter for commands
	now := time.Now().Unix()
	for i := 0; i < 200; i++ {
		store.records = append(store.records, model.UsageRecord{UserID: 1, Kind: enums.RequestKindText, TS: now})
	}

	// leading whitespace must not demote a command to the text flow
	if err := service.HandleUpdate(context.Background(), textUpdate(1, 10, " /help")); err != nil {
		t.Fatalf("handle command: %v", err)
	}

	if len(messenger.texts) != 1 || messenger.texts[0].Text != helpMessage {
		t.Fatalf("expected help message, got %+v", messenger.texts)
	}
	if len(store.records) != 200 {
		t.Fatalf("commands must never touch quota: got %d records", len(store.records))
	}
}

func TestCommandInterpreter(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		mono bool
	}{
		{name: "start", text: "/start", want: startMessage},
		{name: "help", text: "/help", want: helpMessage},
		{name: "help with args", text: "/help me please", want: helpMessage},
		{name: "padded whitespace", text: "  /help \n", want: helpMessage},
		{name: "uppercase", text: "/HELP", want: helpMessage},
		{name: "styles", text: "/styles", want: "banner(ASCII)", mono: true},
		{name: "unknown", text: "/frobnicate", want: unknownCommandNotice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			messenger := &fakeMessenger{}
			service := newTestService(t, &memoryUsageStore{}, messenger, nil, Config{TextThreshold: 3500})

			if err := service.HandleUpdate(context.Background(), textUpdate(1, 10, tc.text)); err != nil {
				t.Fatalf("handle %q: %v", tc.text, err)
			}
			if len(messenger.texts) != 1 {
				t.Fatalf("expected one reply, got %d", len(messenger.texts))
			}
			if messenger.texts[0].Text != tc.want {
				t.Fatalf("unexpected reply for %q: got %q want %q", tc.text, messenger.texts[0].Text, tc.want)
			}
			if messenger.texts[0].Mono != tc.mono {
				t.Fatalf("unexpected mono hint for %q: got %v want %v", tc.text, messenger.texts[0].Mono, tc.mono)
			}
		})
	}
}

func TestOutputSelectorThresholdBoundary(t *testing.T) {
	const threshold = 100

	cases := []struct {
		name      string
		outLen    int
		wantPhoto bool
	}{
		{name: "below threshold", outLen: threshold - 1, wantPhoto: false},
		{name: "at threshold", outLen: threshold, wantPhoto: false},
		{name: "above threshold", outLen: threshold + 1, wantPhoto: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			messenger := &fakeMessenger{}
			conv := &fakeConverter{bannerOut: strings.Repeat("x", tc.outLen)}
			service := newTestService(t, &memoryUsageStore{}, messenger, conv, Config{TextThreshold: threshold})

			if err := service.HandleUpdate(context.Background(), textUpdate(1, 10, "hello")); err != nil {
				t.Fatalf("handle update: %v", err)
			}

			if tc.wantPhoto {
				if len(messenger.photos) != 1 || len(messenger.texts) != 0 {
					t.Fatalf("expected image fallback: photos=%d texts=%d", len(messenger.photos), len(messenger.texts))
				}
				if messenger.photos[0].Caption != imageCaption {
					t.Fatalf("unexpected caption: %q", messenger.photos[0].Caption)
				}
			} else {
				if len(messenger.texts) != 1 || len(messenger.photos) != 0 {
					t.Fatalf("expected text reply: photos=%d texts=%d", len(messenger.photos), len(messenger.texts))
				}
				if !messenger.texts[0].Mono {
					t.Fatalf("converted output must be sent with the monospace hint")
				}
			}
		})
	}
}

func TestPhotoFlowConvertsDownloadedImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}

	store := &memoryUsageStore{}
	messenger := &fakeMessenger{download: buf.Bytes()}
	conv := ascii.NewConverter(ascii.Config{SampleWidth: 10, CacheDir: t.TempDir()})
	service := newTestService(t, store, messenger, conv, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateMessagePhoto, UserID: 2, ChatID: 20, PhotoFileID: "file-1"}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("handle photo update: %v", err)
	}

	if len(store.records) != 1 || store.records[0].Kind != enums.RequestKindImage {
		t.Fatalf("expected one image usage record, got %+v", store.records)
	}
	if len(messenger.texts) != 1 || !messenger.texts[0].Mono {
		t.Fatalf("expected one monospace grid reply, got %+v", messenger.texts)
	}
	if !strings.Contains(messenger.texts[0].Text, "\n") {
		t.Fatalf("expected a multi-row grid, got %q", messenger.texts[0].Text)
	}
}

func TestPhotoDownloadFailureIsContained(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{downloadErr: fmt.Errorf("getFile: 404")}
	service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateMessagePhoto, UserID: 2, ChatID: 20, PhotoFileID: "file-1"}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("photo flow must contain download faults, got %v", err)
	}

	// usage was recorded before the download attempt, and only once
	if len(store.records) != 1 {
		t.Fatalf("expected the pre-download usage record, got %d", len(store.records))
	}
	if len(messenger.texts) != 1 || messenger.texts[0].Text != photoFailNotice {
		t.Fatalf("expected generic failure notice, got %+v", messenger.texts)
	}
}

func TestPhotoConversionFailureIsContained(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{download: []byte("not an image")}
	conv := &fakeConverter{imageErr: errors.New("decode image: bad header")}
	service := newTestService(t, store, messenger, conv, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateMessagePhoto, UserID: 2, ChatID: 20, PhotoFileID: "file-1"}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("photo flow must contain conversion faults, got %v", err)
	}
	if len(messenger.texts) != 1 || messenger.texts[0].Text != photoFailNotice {
		t.Fatalf("expected generic failure notice, got %+v", messenger.texts)
	}
}

func TestPhotoQuotaExceededSendsNotice(t *testing.T) {
	store := &memoryUsageStore{}
	now := time.Now().Unix()
	for i := 0; i < 5; i++ {
		store.records = append(store.records, model.UsageRecord{UserID: 2, Kind: enums.RequestKindImage, TS: now})
	}
	messenger := &fakeMessenger{}
	service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateMessagePhoto, UserID: 2, ChatID: 20, PhotoFileID: "file-1"}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("handle photo update: %v", err)
	}

	if len(store.records) != 5 {
		t.Fatalf("denied photo must not record usage: got %d", len(store.records))
	}
	if len(messenger.texts) != 1 || messenger.texts[0].Text != imageLimitNotice {
		t.Fatalf("expected image quota notice, got %+v", messenger.texts)
	}
}

func TestInlineEmptyQueryUsesPlaceholder(t *testing.T) {
	store := &memoryUsageStore{}
	messenger := &fakeMessenger{}
	conv := &fakeConverter{}
	service := newTestService(t, store, messenger, conv, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateInlineQuery, UserID: 3, QueryID: "q1", Query: "  "}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("handle inline update: %v", err)
	}

	if len(conv.bannerCalls) != 1 || conv.bannerCalls[0] != inlinePlaceholder {
		t.Fatalf("empty query must convert the placeholder, got %+v", conv.bannerCalls)
	}
	if len(messenger.inline) != 1 || len(messenger.inline[0].Results) != 1 {
		t.Fatalf("expected exactly one inline result, got %+v", messenger.inline)
	}
	if len(store.records) != 1 || store.records[0].Kind != enums.RequestKindText {
		t.Fatalf("inline usage must count against the text pool, got %+v", store.records)
	}
}

func TestInlineQuotaExceededAnswersWithZeroResults(t *testing.T) {
	store := &memoryUsageStore{}
	now := time.Now().Unix()
	for i := 0; i < 200; i++ {
		store.records = append(store.records, model.UsageRecord{UserID: 3, Kind: enums.RequestKindText, TS: now})
	}
	messenger := &fakeMessenger{}
	service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

	upd := model.Update{Kind: model.UpdateInlineQuery, UserID: 3, QueryID: "q1", Query: "hello"}
	if err := service.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("handle inline update: %v", err)
	}

	if len(messenger.inline) != 1 || len(messenger.inline[0].Results) != 0 {
		t.Fatalf("exhausted quota must answer with zero results, got %+v", messenger.inline)
	}
	if len(store.records) != 200 {
		t.Fatalf("denied inline query must not record usage: got %d", len(store.records))
	}
}

func TestEditedAndUnknownUpdatesAreIgnored(t *testing.T) {
	for _, kind := range []model.UpdateKind{model.UpdateEdited, model.UpdateUnknown} {
		messenger := &fakeMessenger{}
		store := &memoryUsageStore{}
		service := newTestService(t, store, messenger, nil, Config{TextThreshold: 3500})

		if err := service.HandleUpdate(context.Background(), model.Update{Kind: kind, UserID: 1}); err != nil {
			t.Fatalf("%s update must be a no-op, got %v", kind, err)
		}
		if len(messenger.texts) != 0 || len(messenger.photos) != 0 || len(messenger.inline) != 0 {
			t.Fatalf("%s update must not produce outbound calls", kind)
		}
		if len(store.records) != 0 {
			t.Fatalf("%s update must not record usage", kind)
		}
	}
}

func TestMissingDependenciesFailFast(t *testing.T) {
	service := NewService(Dependencies{}, Config{})

	err := service.HandleUpdate(context.Background(), textUpdate(1, 10, "hi"))
	if !errors.Is(err, ErrDependenciesNil) {
		t.Fatalf("expected ErrDependenciesNil, got %v", err)
	}
}
