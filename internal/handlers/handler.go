package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"instagenie/internal/brand"
	"instagenie/internal/generate"
	"instagenie/internal/mediagroup"
	"instagenie/internal/palette"
	"instagenie/internal/prompt"
	"instagenie/internal/session"
	"instagenie/internal/storage"
	"instagenie/internal/telegram"
)

// Messenger is the part of the Telegram client the handler talks through.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTyping(chatID int64)
	SendUploadingPhoto(chatID int64)
	SendKeyboard(chatID int64, text string, kb telegram.InlineKeyboard) error
	AnswerCallback(callbackID, text string)
	SendPhotoBytes(chatID int64, name string, data []byte, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

type Options struct {
	Telegram  Messenger
	Extractor *palette.Extractor
	Store     *storage.Store
	Batch     *generate.Service
	Sessions  *session.Store
	MaxPosts  int
	Logger    *slog.Logger
}

type Handler struct {
	tg        Messenger
	extractor *palette.Extractor
	store     *storage.Store
	batch     *generate.Service
	sessions  *session.Store
	maxPosts  int
	logger    *slog.Logger

	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxPosts := opts.MaxPosts
	if maxPosts < 1 {
		maxPosts = 5
	}

	return &Handler{
		tg:        opts.Telegram,
		extractor: opts.Extractor,
		store:     opts.Store,
		batch:     opts.Batch,
		sessions:  opts.Sessions,
		maxPosts:  maxPosts,
		logger:    logger,
	}
}

// SetMediaGroupAggregator routes album messages through ag; without one each
// album item is handled as its own logo.
func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	key := session.Key{ChatID: msg.Chat.ID, UserID: msg.From.ID}
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, key, username, msg)
	}

	var file mediagroup.File
	switch {
	case len(msg.Photo) > 0:
		file = mediagroup.File{ID: msg.Photo[len(msg.Photo)-1].FileID, Name: "logo.jpg"}
	case msg.Document != nil:
		if !storage.AllowedExtension(msg.Document.FileName) {
			return h.tg.SendText(key.ChatID, "❌ Send the logo as PNG, JPG, GIF or WEBP.")
		}
		file = mediagroup.File{ID: msg.Document.FileID, Name: msg.Document.FileName}
	}

	if file.ID != "" {
		if msg.MediaGroupID != "" && h.aggregator != nil {
			h.aggregator.Add(mediagroup.Item{
				ChatID:       key.ChatID,
				UserID:       key.UserID,
				Username:     username,
				MediaGroupID: msg.MediaGroupID,
				File:         file,
			})
			return nil
		}
		return h.handleLogo(ctx, key, username, file.ID, file.Name)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.tg.SendText(key.ChatID, "Send me a logo, then use /brand and /generate. /help lists every command.")
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, key session.Key, username string, msg *telegram.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return h.tg.SendText(key.ChatID,
			"✨ InstaGenie\n\n"+
				"I turn your logo and brand details into Instagram post images.\n\n"+
				"1. Send your logo (photo or file)\n"+
				"2. /brand Company | Industry | Theme\n"+
				"3. /tone to pick a style\n"+
				"4. /generate 3\n\n"+
				"/help shows every command.",
		)
	case "help":
		return h.tg.SendText(key.ChatID,
			"Commands:\n"+
				"/brand Company | Industry | Theme - set brand details\n"+
				"/tone [name] - choose a tone\n"+
				"/palette - show the current colors\n"+
				fmt.Sprintf("/generate [1-%d] - create posts\n", h.maxPosts)+
				"/reset - start over\n\n"+
				"Send a logo at any time to re-extract the palette.",
		)
	case "reset":
		h.sessions.Clear(key)
		return h.tg.SendText(key.ChatID, "✅ Brand draft cleared.")
	case "brand":
		return h.handleBrand(key, username, args)
	case "tone":
		return h.handleTone(key, username, args)
	case "palette":
		d := h.sessions.Snapshot(key, username)
		return h.tg.SendText(key.ChatID, formatDraft(d))
	case "generate":
		return h.handleGenerate(ctx, key, username, args)
	default:
		return h.tg.SendText(key.ChatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) handleBrand(key session.Key, username, args string) error {
	if args == "" {
		d := h.sessions.Snapshot(key, username)
		return h.tg.SendText(key.ChatID, formatDraft(d)+"\n\nUsage: /brand Company | Industry | Theme")
	}

	fields := parseBrandArgs(args)
	d := h.sessions.Update(key, username, func(d *session.Draft) {
		if fields.company != nil {
			d.CompanyName = *fields.company
		}
		if fields.industry != nil {
			d.Industry = *fields.industry
		}
		if fields.theme != nil {
			d.ContentTheme = *fields.theme
		}
	})
	return h.tg.SendText(key.ChatID, "✅ Saved.\n\n"+formatDraft(d))
}

// HandleMediaGroup uses the first file of an album as the logo.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if len(group.Files) == 0 {
		return
	}
	key := session.Key{ChatID: group.ChatID, UserID: group.UserID}
	if len(group.Files) > 1 {
		_ = h.tg.SendText(key.ChatID, fmt.Sprintf("ℹ️ You sent %d images; I'll use the first one as your logo.", len(group.Files)))
	}
	first := group.Files[0]
	if err := h.handleLogo(ctx, key, group.Username, first.ID, first.Name); err != nil {
		h.logger.Error("media group processing failed", "err", err)
	}
}

func (h *Handler) handleLogo(ctx context.Context, key session.Key, username, fileID, name string) error {
	h.tg.SendTyping(key.ChatID)

	data, _, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error("logo download failed", "err", err)
		return h.tg.SendText(key.ChatID, "❌ Could not download the logo. Please try again.")
	}

	filename, err := h.store.SaveUpload(name, bytes.NewReader(data))
	if err != nil {
		h.logger.Error("logo save failed", "err", err)
		return h.tg.SendText(key.ChatID, "❌ Could not store the logo.")
	}

	path, err := h.store.UploadPath(filename)
	if err != nil {
		return err
	}
	ex := h.extractor.Extract(path)
	if ex.Fallback {
		h.logger.Warn("using fallback palette", "file", filename, "err", ex.Err)
	}

	d := h.sessions.Update(key, username, func(d *session.Draft) {
		d.LogoFilename = filename
		p := ex.Palette.Clone()
		d.Palette = &p
	})

	text := "🎨 Brand colors extracted successfully!\n\n" + formatPalette(*d.Palette)
	if ex.Fallback {
		text = "⚠️ I couldn't read colors from that image, so I'll use a default palette.\n\n" + formatPalette(*d.Palette)
	}
	return h.tg.SendText(key.ChatID, text+"\n\nNext: /brand Company | Industry | Theme")
}

func (h *Handler) handleGenerate(ctx context.Context, key session.Key, username, args string) error {
	count, err := parseCount(args, h.maxPosts)
	if err != nil {
		return h.tg.SendText(key.ChatID, fmt.Sprintf("❌ Usage: /generate [1-%d]", h.maxPosts))
	}

	if !h.sessions.TryBegin(key, username) {
		return h.tg.SendText(key.ChatID, "⏳ Still working on your previous request.")
	}
	defer h.sessions.End(key)

	d := h.sessions.Snapshot(key, username)
	job := jobFromDraft(d, count)
	if d.LogoFilename != "" {
		logo, err := h.store.LoadLogo(d.LogoFilename)
		if err != nil {
			h.logger.Warn("logo not loaded", "ref", d.LogoFilename, "err", err)
		} else {
			job.Logo = logo
		}
	}

	h.tg.SendUploadingPhoto(key.ChatID)
	_ = h.tg.SendText(key.ChatID, fmt.Sprintf("🎨 Generating %d %s post(s) for %s, this can take a minute...", count, prompt.ToneName(job.Tone), job.CompanyName))

	outcomes := h.batch.Generate(ctx, job)
	for _, o := range outcomes {
		if !o.OK() {
			_ = h.tg.SendText(key.ChatID, fmt.Sprintf("❌ Variation %d failed: %s", o.VariationIndex, o.Failure.Reason))
			continue
		}
		if err := h.sendGenerated(key.ChatID, o); err != nil {
			h.logger.Error("send photo failed", "variation", o.VariationIndex, "err", err)
			_ = h.tg.SendText(key.ChatID, fmt.Sprintf("❌ Variation %d could not be sent.", o.VariationIndex))
		}
	}

	succeeded, _ := generate.Count(outcomes)
	return h.tg.SendText(key.ChatID, fmt.Sprintf("Generated %d images", succeeded))
}

func (h *Handler) sendGenerated(chatID int64, o generate.Outcome) error {
	path, err := h.store.GeneratedPath(o.Success.Filename)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("Variation %d · %s", o.VariationIndex, prompt.ToneName(o.Tone))
	return h.tg.SendPhotoBytes(chatID, filepath.Base(path), data, caption)
}

func jobFromDraft(d session.Draft, count int) generate.Job {
	job := generate.Job{
		CompanyName:  valueOr(d.CompanyName, "Your Brand"),
		Industry:     valueOr(d.Industry, "General"),
		ContentTheme: valueOr(d.ContentTheme, "Product showcase"),
		Tone:         brand.ParseTone(string(d.Tone)),
		Palette:      brand.FallbackPalette(),
		Count:        count,
	}
	if d.Palette != nil {
		job.Palette = d.Palette.Clone()
	}
	return job
}

func formatDraft(d session.Draft) string {
	var b strings.Builder
	b.WriteString("Current brand:\n")
	b.WriteString("Company: " + valueOr(d.CompanyName, "-") + "\n")
	b.WriteString("Industry: " + valueOr(d.Industry, "-") + "\n")
	b.WriteString("Theme: " + valueOr(d.ContentTheme, "-") + "\n")
	b.WriteString("Tone: " + prompt.ToneName(d.Tone) + "\n")
	if d.LogoFilename != "" {
		b.WriteString("Logo: uploaded\n")
	} else {
		b.WriteString("Logo: none\n")
	}
	if d.Palette != nil {
		b.WriteString(formatPalette(*d.Palette))
	} else {
		b.WriteString("Colors: default palette")
	}
	return b.String()
}

func formatPalette(p brand.Palette) string {
	hexes := make([]string, 0, len(p.Swatches))
	for _, c := range p.Swatches {
		hexes = append(hexes, c.Hex())
	}
	return fmt.Sprintf("Primary: %s\nPalette: %s", p.Dominant.Hex(), strings.Join(hexes, " "))
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
