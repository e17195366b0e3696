package pushbullet

import (
	"reflect"
	"testing"
)

func TestPushTargetApply(t *testing.T) {
	tests := []struct {
		name     string
		target   PushTarget
		expected map[string]any
	}{
		{
			name:     "self",
			target:   TargetSelf(),
			expected: map[string]any{},
		},
		{
			name:     "device",
			target:   TargetDevice("abc123"),
			expected: map[string]any{"device_iden": "abc123"},
		},
		{
			name:     "email",
			target:   TargetEmail("user@example.com"),
			expected: map[string]any{"email": "user@example.com"},
		},
		{
			name:     "channel",
			target:   TargetChannel("mytag"),
			expected: map[string]any{"channel_tag": "mytag"},
		},
		{
			name:     "oauth client",
			target:   TargetClient("client-iden"),
			expected: map[string]any{"client_iden": "client-iden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make(map[string]any)
			tt.target.apply(payload)
			if !reflect.DeepEqual(payload, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, payload)
			}
		})
	}
}

func TestPushDataApply(t *testing.T) {
	tests := []struct {
		name     string
		data     PushData
		expected map[string]any
	}{
		{
			name: "note",
			data: Note{Title: "title", Body: "body"},
			expected: map[string]any{
				"type":  "note",
				"title": "title",
				"body":  "body",
			},
		},
		{
			name: "note with empty title",
			data: Note{Body: "body"},
			expected: map[string]any{
				"type":  "note",
				"title": "",
				"body":  "body",
			},
		},
		{
			name: "link",
			data: Link{Title: "t", Body: "b", URL: "https://example.com"},
			expected: map[string]any{
				"type":  "link",
				"title": "t",
				"body":  "b",
				"url":   "https://example.com",
			},
		},
		{
			name: "file",
			data: File{Body: "b", FileName: "f.txt", FileType: "text/plain", FileURL: "https://dl.example.com/f.txt"},
			expected: map[string]any{
				"type":      "file",
				"body":      "b",
				"file_name": "f.txt",
				"file_type": "text/plain",
				"file_url":  "https://dl.example.com/f.txt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make(map[string]any)
			tt.data.apply(payload)
			if !reflect.DeepEqual(payload, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, payload)
			}
		})
	}
}
