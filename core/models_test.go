package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "Streaming commissioners are actively buying international crime dramas this quarter",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestID_String(t *testing.T) {
	if got := ID(42).String(); got != "42" {
		t.Errorf("ID.String() = %v, want %v", got, "42")
	}
	if got := ID(0).String(); got != "0" {
		t.Errorf("ID.String() = %v, want %v", got, "0")
	}
}

func TestDocument_Candidate(t *testing.T) {
	doc := &Document{
		Id:   ID(7),
		Text: "Jane Doe runs the international originals group.",
		Metadata: DocMetadata{
			Source:   "org-chart",
			EntityID: "person:jane-doe",
		},
	}

	cand := doc.Candidate(0.87)

	if cand.ID != "7" {
		t.Errorf("Candidate().ID = %v, want %v", cand.ID, "7")
	}
	if cand.Score != 0.87 {
		t.Errorf("Candidate().Score = %v, want %v", cand.Score, 0.87)
	}
	if cand.Text != doc.Text {
		t.Errorf("Candidate().Text = %v, want %v", cand.Text, doc.Text)
	}
	if cand.Metadata.EntityID != "person:jane-doe" {
		t.Errorf("Candidate().Metadata.EntityID = %v, want %v", cand.Metadata.EntityID, "person:jane-doe")
	}
}
