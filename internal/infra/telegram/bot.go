package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Mohammed137/ascii-master-bot/internal/services/dispatch"
)

// Bot is the outbound messaging transport. Sends are attempted once and never
// retried here.
type Bot struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
}

func NewBot(token string) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{
		api: api,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// SendText delivers a plain message; mono wraps the text in a <pre> block so
// clients render it with a fixed-width font.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, mono bool) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if mono {
		msg.Text = "<pre>" + html.EscapeString(text) + "</pre>"
		msg.ParseMode = tgbotapi.ModeHTML
	}

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) SendPhoto(ctx context.Context, chatID int64, filePath, caption string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || strings.TrimSpace(filePath) == "" {
		return fmt.Errorf("invalid photo payload")
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(filePath))
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) AnswerInlineQuery(ctx context.Context, queryID string, results []dispatch.InlineResult) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(queryID) == "" {
		return fmt.Errorf("inline query id is required")
	}

	items := make([]interface{}, 0, len(results))
	for _, res := range results {
		article := tgbotapi.NewInlineQueryResultArticleHTML(
			res.ID,
			res.Title,
			"<pre>"+html.EscapeString(res.MessageText)+"</pre>",
		)
		article.Description = res.Description
		items = append(items, article)
	}

	cfg := tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		IsPersonal:    true,
		Results:       items,
	}
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer inline query: %w", err)
	}

	_ = ctx
	return nil
}

// DownloadFile fetches the raw bytes behind a file reference via getFile.
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if b == nil || b.api == nil {
		return nil, fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("file id is required")
	}

	tgFile, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get telegram file: %w", err)
	}

	fileURL := tgFile.Link(b.api.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create file request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected telegram file status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read telegram file body: %w", err)
	}

	return data, nil
}
