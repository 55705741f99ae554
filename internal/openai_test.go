package internal

import (
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestTransport() *OpenAITransport {
	return NewOpenAITransport(BackendConfig{
		Model:   "gpt-4o-mini",
		Headers: map[string]string{"X-Geo-Region": "eu-west"},
	}, NewFakeAuth(true))
}

func TestClassify(t *testing.T) {
	transport := newTestTransport()

	tests := []struct {
		name        string
		err         error
		wantExpired bool
		wantStatus  int
	}{
		{
			name:        "401 is auth expired",
			err:         &openai.APIError{HTTPStatusCode: http.StatusUnauthorized},
			wantExpired: true,
			wantStatus:  401,
		},
		{
			name:        "403 is auth expired",
			err:         &openai.APIError{HTTPStatusCode: http.StatusForbidden},
			wantExpired: true,
			wantStatus:  403,
		},
		{
			name:       "500 is generic",
			err:        &openai.APIError{HTTPStatusCode: http.StatusInternalServerError},
			wantStatus: 500,
		},
		{
			name:       "429 is generic",
			err:        &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			wantStatus: 429,
		},
		{
			name: "plain network error is generic",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := transport.classify("msg-1", tt.err)

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("classify() = %T, want *TransportError", err)
			}
			if te.AuthExpired != tt.wantExpired {
				t.Errorf("AuthExpired = %v, want %v", te.AuthExpired, tt.wantExpired)
			}
			if te.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", te.Status, tt.wantStatus)
			}
			if IsAuthExpired(err) != tt.wantExpired {
				t.Errorf("IsAuthExpired() = %v, want %v", IsAuthExpired(err), tt.wantExpired)
			}

			// The originating id must survive classification
			if te.ClientMessageID != "msg-1" {
				t.Errorf("ClientMessageID = %q, want msg-1", te.ClientMessageID)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	transport := newTestTransport()

	headers := transport.requestHeaders(SendRequest{
		ChatID:          "chat1",
		ClientMessageID: "msg-1",
		ContextHeaders:  map[string]string{"X-Geo-Region": "us-east", "X-Session-Hint": "abc"},
	})

	// Per-request context headers win over ambient ones
	if headers["X-Geo-Region"] != "us-east" {
		t.Errorf("X-Geo-Region = %q, want the per-request value", headers["X-Geo-Region"])
	}
	if headers["X-Session-Hint"] != "abc" {
		t.Errorf("X-Session-Hint = %q, want abc", headers["X-Session-Hint"])
	}
	if headers["X-Client-Message-Id"] != "msg-1" {
		t.Errorf("X-Client-Message-Id = %q, want msg-1", headers["X-Client-Message-Id"])
	}
	if headers["X-Chat-Id"] != "chat1" {
		t.Errorf("X-Chat-Id = %q, want chat1", headers["X-Chat-Id"])
	}
}

func TestRequestHeadersAmbientOnly(t *testing.T) {
	transport := newTestTransport()

	headers := transport.requestHeaders(SendRequest{ClientMessageID: "msg-1"})
	if headers["X-Geo-Region"] != "eu-west" {
		t.Errorf("X-Geo-Region = %q, want the ambient value", headers["X-Geo-Region"])
	}
	if _, ok := headers["X-Chat-Id"]; ok {
		t.Error("X-Chat-Id set without a chat id")
	}
}

func TestBuildMessages(t *testing.T) {
	t.Run("text only", func(t *testing.T) {
		msgs := buildMessages(SendRequest{Text: "hello"})
		if len(msgs) != 1 {
			t.Fatalf("buildMessages() returned %d messages, want 1", len(msgs))
		}
		if msgs[0].Role != openai.ChatMessageRoleUser || msgs[0].Content != "hello" {
			t.Errorf("message = %+v, want plain user content", msgs[0])
		}
	})

	t.Run("image attachment", func(t *testing.T) {
		msgs := buildMessages(SendRequest{
			Text: "what is this",
			Attachments: []Attachment{
				{ID: "a1", URL: "https://example.com/x.png", Mime: "image/png"},
			},
		})
		if len(msgs) != 1 {
			t.Fatalf("buildMessages() returned %d messages, want 1", len(msgs))
		}
		parts := msgs[0].MultiContent
		if len(parts) != 2 {
			t.Fatalf("MultiContent has %d parts, want 2", len(parts))
		}
		if parts[0].Type != openai.ChatMessagePartTypeText || parts[0].Text != "what is this" {
			t.Errorf("first part = %+v, want the text", parts[0])
		}
		if parts[1].Type != openai.ChatMessagePartTypeImageURL ||
			parts[1].ImageURL == nil || parts[1].ImageURL.URL != "https://example.com/x.png" {
			t.Errorf("second part = %+v, want the image", parts[1])
		}
	})

	t.Run("non-image attachment referenced by URL", func(t *testing.T) {
		msgs := buildMessages(SendRequest{
			Attachments: []Attachment{
				{ID: "a1", Name: "notes.pdf", URL: "https://example.com/n.pdf", Mime: "application/pdf"},
			},
		})
		parts := msgs[0].MultiContent
		if len(parts) != 1 || parts[0].Type != openai.ChatMessagePartTypeText {
			t.Fatalf("MultiContent = %+v, want one text part", parts)
		}
	})
}

func TestHeaderRoundTripper(t *testing.T) {
	var seen http.Header
	rt := &headerRoundTripper{
		base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		headers: map[string]string{"X-Client-Message-Id": "msg-1"},
	}

	req, _ := http.NewRequest(http.MethodPost, "https://example.com", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	defer resp.Body.Close()

	if seen.Get("X-Client-Message-Id") != "msg-1" {
		t.Errorf("header = %q, want msg-1", seen.Get("X-Client-Message-Id"))
	}
	// The original request is not mutated
	if req.Header.Get("X-Client-Message-Id") != "" {
		t.Error("RoundTrip() mutated the original request")
	}
}

// roundTripFunc adapts a function to http.RoundTripper
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
