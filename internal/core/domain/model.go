package domain

import (
	"encoding/json"
	"fmt"
)

const (
	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
	RoleUser            = "user"
)

// ModelRequest is the chat-completions payload sent to the vision model.
type ModelRequest struct {
	Model     string         `json:"model"`
	Messages  []ModelMessage `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
}

type ModelMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is either a TextBlock or an ImageBlock.
type ContentBlock interface {
	blockType() string
}

type TextBlock struct {
	Text string
}

type ImageBlock struct {
	URL string
}

func (TextBlock) blockType() string  { return ContentTypeText }
func (ImageBlock) blockType() string { return ContentTypeImageURL }

func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: ContentTypeText, Text: b.Text})
}

func (b ImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		ImageURL string `json:"image_url"`
	}{Type: ContentTypeImageURL, ImageURL: b.URL})
}

func (m *ModelMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role    string            `json:"role"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = make([]ContentBlock, 0, len(raw.Content))
	for _, item := range raw.Content {
		var block struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL string `json:"image_url"`
		}
		if err := json.Unmarshal(item, &block); err != nil {
			return err
		}
		switch block.Type {
		case ContentTypeText:
			m.Content = append(m.Content, TextBlock{Text: block.Text})
		case ContentTypeImageURL:
			m.Content = append(m.Content, ImageBlock{URL: block.ImageURL})
		default:
			return fmt.Errorf("unsupported content block type %q", block.Type)
		}
	}
	return nil
}

type ModelResponse struct {
	Choices []ModelChoice `json:"choices"`
}

type ModelChoice struct {
	Message ModelReplyMessage `json:"message"`
}

type ModelReplyMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}
