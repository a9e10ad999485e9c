package dispatch

import (
	"context"
	"strings"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
)

const (
	startMessage = "🔥 AsciiMaster\n\n" +
		"Send text to convert it into ASCII banners.\n" +
		"Send a photo and get ASCII art of the image.\n\n" +
		"Commands:\n" +
		"/help - usage\n" +
		"/styles - available text styles\n\n" +
		"You can also use inline mode: @AsciiMaster_bot <text>"

	helpMessage = "Send text or photo. Use /styles to see ASCII text styles."

	unknownCommandNotice = "Unknown command. Use /help."

	// stylesSample is rendered by /styles to show the configured font.
	stylesSample = "ASCII"
)

// handleCommand interprets the first whitespace-delimited token, lowercased.
// Commands never consult or affect quota.
func (s *Service) handleCommand(ctx context.Context, upd model.Update) error {
	cmd := strings.ToLower(strings.Fields(upd.Text)[0])

	switch cmd {
	case "/start":
		s.send(ctx, upd.ChatID, startMessage, false)
	case "/help":
		s.send(ctx, upd.ChatID, helpMessage, false)
	case "/styles":
		s.send(ctx, upd.ChatID, s.renderBanner(ctx, stylesSample), true)
	default:
		s.send(ctx, upd.ChatID, unknownCommandNotice, false)
	}

	return nil
}
