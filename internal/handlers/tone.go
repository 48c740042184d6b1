package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"instagenie/internal/brand"
	"instagenie/internal/prompt"
	"instagenie/internal/session"
	"instagenie/internal/telegram"
)

const toneCallbackPrefix = "tone"

func (h *Handler) handleTone(key session.Key, username, args string) error {
	if args != "" {
		t := brand.Tone(strings.ToLower(strings.TrimSpace(args)))
		if !t.Known() {
			return h.tg.SendText(key.ChatID, "❌ Unknown tone. Choose one of: "+toneList())
		}
		h.setTone(key, username, t)
		return h.tg.SendText(key.ChatID, "✅ Tone set to "+prompt.ToneName(t)+".")
	}

	d := h.sessions.Snapshot(key, username)
	text := "Pick a tone (current: " + prompt.ToneName(d.Tone) + ")"
	return h.tg.SendKeyboard(key.ChatID, text, toneKeyboard(key.UserID))
}

func (h *Handler) setTone(key session.Key, username string, t brand.Tone) {
	h.sessions.Update(key, username, func(d *session.Draft) { d.Tone = t })
}

// Callback data is "tone:<owner user id>:<tone key>".
func toneCallbackData(ownerID int64, t brand.Tone) string {
	return fmt.Sprintf("%s:%d:%s", toneCallbackPrefix, ownerID, t)
}

func toneKeyboard(ownerID int64) telegram.InlineKeyboard {
	var buttons []telegram.Button
	for _, opt := range prompt.Tones() {
		buttons = append(buttons, telegram.Button{
			Text: opt.Name,
			Data: toneCallbackData(ownerID, brand.Tone(opt.Key)),
		})
	}
	return telegram.Keyboard(buttons, 3)
}

func (h *Handler) handleCallback(q *telegram.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}

	parts := strings.Split(strings.TrimSpace(q.Data), ":")
	if len(parts) != 3 || parts[0] != toneCallbackPrefix {
		h.tg.AnswerCallback(q.ID, "")
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		h.tg.AnswerCallback(q.ID, "")
		return nil
	}
	if ownerID != q.From.ID {
		h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.")
		return nil
	}

	t := brand.Tone(parts[2])
	if !t.Known() {
		h.tg.AnswerCallback(q.ID, "Unknown tone")
		return nil
	}

	key := session.Key{ChatID: q.Message.Chat.ID, UserID: ownerID}
	h.setTone(key, q.From.UserName, t)
	h.tg.AnswerCallback(q.ID, prompt.ToneName(t)+" selected")
	return h.tg.SendText(key.ChatID, "✅ Tone set to "+prompt.ToneName(t)+": "+t.Description())
}

func toneList() string {
	tones := brand.Tones()
	keys := make([]string, 0, len(tones))
	for _, t := range tones {
		keys = append(keys, string(t))
	}
	return strings.Join(keys, ", ")
}
