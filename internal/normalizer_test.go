package internal

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		draft    Draft
		wantNil  bool
		wantText string
	}{
		{
			name:    "empty draft",
			draft:   Draft{},
			wantNil: true,
		},
		{
			name:    "whitespace only",
			draft:   Draft{Text: "   \t\n  "},
			wantNil: true,
		},
		{
			name:     "trims text",
			draft:    Draft{Text: "  hello  "},
			wantText: "hello",
		},
		{
			name: "attachments only",
			draft: Draft{
				Attachments: []Attachment{{ID: "a1", URL: "https://example.com/img.png"}},
			},
			wantText: "",
		},
		{
			name: "whitespace text with attachment",
			draft: Draft{
				Text:        "   ",
				Attachments: []Attachment{{ID: "a1", URL: "https://example.com/img.png"}},
			},
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := normalizer.Normalize(tt.draft)
			if (msg == nil) != tt.wantNil {
				t.Fatalf("Normalize() = %v, wantNil %v", msg, tt.wantNil)
			}
			if msg == nil {
				return
			}
			if msg.Text != tt.wantText {
				t.Errorf("Normalize().Text = %q, want %q", msg.Text, tt.wantText)
			}
			if msg.ClientMessageID == "" {
				t.Error("Normalize() should assign a client message id")
			}
			if len(msg.Attachments) != len(tt.draft.Attachments) {
				t.Errorf("Normalize().Attachments length = %d, want %d",
					len(msg.Attachments), len(tt.draft.Attachments))
			}
		})
	}
}

func TestNormalizePreservesClientMessageID(t *testing.T) {
	normalizer := NewNormalizer()

	msg := normalizer.Normalize(Draft{Text: "retry me", ClientMessageID: "existing-id"})
	if msg == nil {
		t.Fatal("Normalize() returned nil for valid draft")
	}
	if msg.ClientMessageID != "existing-id" {
		t.Errorf("ClientMessageID = %q, want %q", msg.ClientMessageID, "existing-id")
	}
}

func TestNormalizeGeneratesUniqueIDs(t *testing.T) {
	normalizer := NewNormalizer()

	first := normalizer.Normalize(Draft{Text: "one"})
	second := normalizer.Normalize(Draft{Text: "two"})
	if first == nil || second == nil {
		t.Fatal("Normalize() returned nil for valid drafts")
	}
	if first.ClientMessageID == second.ClientMessageID {
		t.Errorf("two normalizations produced the same id %q", first.ClientMessageID)
	}
}

func TestNormalizeHasNoSideEffects(t *testing.T) {
	normalizer := NewNormalizer()

	draft := Draft{
		Text:        "  hello  ",
		Attachments: []Attachment{{ID: "a1", URL: "https://example.com/x"}},
	}
	msg := normalizer.Normalize(draft)
	if msg == nil {
		t.Fatal("Normalize() returned nil for valid draft")
	}

	// Mutating the result must not touch the draft
	msg.Attachments[0].ID = "changed"
	if draft.Attachments[0].ID != "a1" {
		t.Error("Normalize() shares attachment backing array with the draft")
	}
	if draft.Text != "  hello  " {
		t.Error("Normalize() mutated the draft text")
	}
}
