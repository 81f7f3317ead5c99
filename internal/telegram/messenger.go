package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/domain"
)

const DEFAULT_API_BASE_URL = "https://api.telegram.org"

// Messenger sends notifications to one chat. Implementations must
// classify permanently unreachable recipients as domain.ErrRecipientGone
// so the caller can stop targeting them.
//
//go:generate mockgen -source=messenger.go -destination=../mocks/messenger.go -package=mocks -mock_names=Messenger=MockMessenger
type Messenger interface {
	// SendMessage sends an HTML-formatted text message
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error

	// SendPhoto sends a local image file with an HTML-formatted caption
	SendPhoto(ctx context.Context, chatID int64, photoPath string, caption string, opts *SendOptions) error

	// Ping verifies the bot token against the API for health checks
	Ping(ctx context.Context) error
}

// SendOptions carries optional per-message presentation
type SendOptions struct {
	// InlineButtonText and InlineButtonURL attach one URL button under the message
	InlineButtonText string
	InlineButtonURL  string
}

// Config holds the bot API configuration
type Config struct {
	BotToken   string
	APIBaseURL string // Defaults to the public bot API
}

type botMessenger struct {
	config Config
	client adapter.HTTPClient
	fs     adapter.FileSystem
}

// apiResponse is the bot API response envelope
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// NewMessenger creates a bot API messenger
func NewMessenger(cfg Config, client adapter.HTTPClient, fs adapter.FileSystem) (Messenger, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DEFAULT_API_BASE_URL
	}

	return &botMessenger{
		config: cfg,
		client: client,
		fs:     fs,
	}, nil
}

func (m *botMessenger) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", m.config.APIBaseURL, m.config.BotToken, method)
}

// SendMessage sends an HTML-formatted text message
func (m *botMessenger) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup := inlineKeyboard(opts); markup != nil {
		payload["reply_markup"] = markup
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	resp, err := m.client.Post(ctx, m.methodURL("sendMessage"), "application/json", bytes.NewReader(body))
	return m.checkResponse(resp, err)
}

// SendPhoto sends a local image file with an HTML-formatted caption
func (m *botMessenger) SendPhoto(ctx context.Context, chatID int64, photoPath string, caption string, opts *SendOptions) error {
	photo, err := m.fs.ReadFile(photoPath)
	if err != nil {
		return fmt.Errorf("failed to read photo file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption field: %w", err)
		}
		if err := writer.WriteField("parse_mode", "HTML"); err != nil {
			return fmt.Errorf("failed to write parse_mode field: %w", err)
		}
	}
	if markup := inlineKeyboard(opts); markup != nil {
		markupJSON, err := json.Marshal(markup)
		if err != nil {
			return fmt.Errorf("failed to marshal reply markup: %w", err)
		}
		if err := writer.WriteField("reply_markup", string(markupJSON)); err != nil {
			return fmt.Errorf("failed to write reply_markup field: %w", err)
		}
	}

	mtype := mimetype.Detect(photo)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="photo"; filename="%s"`, filepath.Base(photoPath)))
	header.Set("Content-Type", mtype.String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("failed to write photo part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	resp, err := m.client.Post(ctx, m.methodURL("sendPhoto"), writer.FormDataContentType(), &buf)
	return m.checkResponse(resp, err)
}

// Ping verifies the bot token against the API
func (m *botMessenger) Ping(ctx context.Context) error {
	var resp apiResponse
	if err := m.client.Get(ctx, m.methodURL("getMe"), nil, &resp); err != nil {
		return fmt.Errorf("failed to reach bot API: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("bot API rejected token: %s", resp.Description)
	}
	return nil
}

// checkResponse folds transport and API-level failures into one error,
// classifying permanently unreachable recipients
func (m *botMessenger) checkResponse(respBody []byte, err error) error {
	if err != nil {
		if isRecipientGone(err.Error()) {
			return fmt.Errorf("%w: %v", domain.ErrRecipientGone, err)
		}
		return err
	}

	var resp apiResponse
	if unmarshalErr := json.Unmarshal(respBody, &resp); unmarshalErr != nil {
		return fmt.Errorf("failed to decode bot API response: %w", unmarshalErr)
	}
	if !resp.OK {
		if resp.ErrorCode == 403 || isRecipientGone(resp.Description) {
			return fmt.Errorf("%w: %s", domain.ErrRecipientGone, resp.Description)
		}
		return fmt.Errorf("bot API error %d: %s", resp.ErrorCode, resp.Description)
	}
	return nil
}

// isRecipientGone matches the API failure modes that mean the chat will
// never be reachable again
func isRecipientGone(message string) bool {
	message = strings.ToLower(message)
	for _, marker := range []string{
		"status code 403",
		"bot was blocked",
		"user is deactivated",
		"chat not found",
		"bot was kicked",
		"not enough rights",
	} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

// inlineKeyboard builds the single-button inline keyboard markup
func inlineKeyboard(opts *SendOptions) map[string]interface{} {
	if opts == nil || opts.InlineButtonText == "" || opts.InlineButtonURL == "" {
		return nil
	}
	return map[string]interface{}{
		"inline_keyboard": [][]map[string]string{
			{{"text": opts.InlineButtonText, "url": opts.InlineButtonURL}},
		},
	}
}
