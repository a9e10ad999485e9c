package dispatch

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
)

// Classify maps one wire update onto the closed update variant. Precedence:
// message text (commands included) before photo, photo before inline query;
// edited messages are acknowledged, everything else is unknown.
func Classify(upd tgbotapi.Update) model.Update {
	if msg := upd.Message; msg != nil && msg.From != nil && msg.Chat != nil {
		base := model.Update{
			ChatID: msg.Chat.ID,
			UserID: msg.From.ID,
		}

		if msg.Text != "" {
			base.Kind = model.UpdateMessageText
			base.Text = msg.Text
			return base
		}

		if len(msg.Photo) > 0 {
			base.Kind = model.UpdateMessagePhoto
			// the size-ordered list ends with the highest resolution
			base.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
			return base
		}

		base.Kind = model.UpdateUnknown
		return base
	}

	if q := upd.InlineQuery; q != nil && q.From != nil {
		return model.Update{
			Kind:    model.UpdateInlineQuery,
			UserID:  q.From.ID,
			QueryID: q.ID,
			Query:   q.Query,
		}
	}

	if upd.EditedMessage != nil {
		return model.Update{Kind: model.UpdateEdited}
	}

	return model.Update{Kind: model.UpdateUnknown}
}
