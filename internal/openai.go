package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITransport streams chat completions from an OpenAI-compatible
// backend. The identity token is read from the auth provider on every
// send, so a token refreshed after re-login is picked up without
// rebuilding the transport.
type OpenAITransport struct {
	baseURL string
	model   string
	timeout time.Duration
	auth    AuthProvider

	// ambient headers from the context-priming collaborator (e.g.
	// coarse geolocation); treated as opaque key-value pairs
	headers map[string]string
}

// NewOpenAITransport creates a transport for cfg, authenticating via
// auth
func NewOpenAITransport(cfg BackendConfig, auth AuthProvider) *OpenAITransport {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAITransport{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: timeout,
		auth:    auth,
		headers: cfg.Headers,
	}
}

// Send delivers req and forwards streamed tokens to onToken
func (t *OpenAITransport) Send(ctx context.Context, req SendRequest, onToken TokenFunc) error {
	config := openai.DefaultConfig(t.auth.IdentityToken())
	if t.baseURL != "" {
		config.BaseURL = t.baseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: t.timeout,
		Transport: &headerRoundTripper{
			base:    http.DefaultTransport,
			headers: t.requestHeaders(req),
		},
	}
	client := openai.NewClientWithConfig(config)

	stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    t.model,
		Messages: buildMessages(req),
		User:     req.ChatID,
	})
	if err != nil {
		return t.classify(req.ClientMessageID, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return t.classify(req.ClientMessageID, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if token := resp.Choices[0].Delta.Content; token != "" && onToken != nil {
			onToken(token)
		}
	}
}

// requestHeaders merges ambient headers with per-request context
// headers; per-request values win
func (t *OpenAITransport) requestHeaders(req SendRequest) map[string]string {
	headers := make(map[string]string, len(t.headers)+len(req.ContextHeaders)+2)
	for k, v := range t.headers {
		headers[k] = v
	}
	for k, v := range req.ContextHeaders {
		headers[k] = v
	}
	headers["X-Client-Message-Id"] = req.ClientMessageID
	if req.ChatID != "" {
		headers["X-Chat-Id"] = req.ChatID
	}
	return headers
}

// classify turns a raw backend error into a TransportError. HTTP 401
// and 403 mean the identity token is stale or invalid; everything else
// (timeouts included) is a generic delivery failure.
func (t *OpenAITransport) classify(clientMessageID string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		expired := apiErr.HTTPStatusCode == http.StatusUnauthorized ||
			apiErr.HTTPStatusCode == http.StatusForbidden
		return &TransportError{
			ClientMessageID: clientMessageID,
			Status:          apiErr.HTTPStatusCode,
			AuthExpired:     expired,
			Err:             err,
		}
	}
	return &TransportError{ClientMessageID: clientMessageID, Err: err}
}

// buildMessages converts a send request into chat-completion messages.
// Image attachments become image parts; other attachment types are
// referenced by URL in the text.
func buildMessages(req SendRequest) []openai.ChatCompletionMessage {
	if len(req.Attachments) == 0 {
		return []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		}
	}

	parts := make([]openai.ChatMessagePart, 0, len(req.Attachments)+1)
	if req.Text != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Text,
		})
	}
	for _, att := range req.Attachments {
		if strings.HasPrefix(att.Mime, "image/") {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: att.URL},
			})
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: "[attachment] " + att.Name + " " + att.URL,
		})
	}

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	}
}

// headerRoundTripper injects static headers into every request
type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range h.headers {
		clone.Header.Set(k, v)
	}
	return h.base.RoundTrip(clone)
}
