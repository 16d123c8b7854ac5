package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   *Query
		wantErr error
	}{
		{
			name: "valid query",
			query: &Query{
				Text:   "Who should I pitch a Korean crime thriller to?",
				Intent: IntentRouting,
			},
			wantErr: nil,
		},
		{
			name: "valid query without intent",
			query: &Query{
				Text: "What are buyers looking for right now?",
			},
			wantErr: nil,
		},
		{
			name: "valid query with attributes",
			query: &Query{
				Text:       "Any mandates for limited series?",
				Attributes: map[string]string{"format": "limited series"},
			},
			wantErr: nil,
		},
		{
			name:    "nil query",
			query:   nil,
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "empty text",
			query:   &Query{Text: ""},
			wantErr: ErrEmptyQueryText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Id:         1,
				Text:       "Acme Studios closed a first-look deal with a Seoul-based producer.",
				InsertedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid document with empty vector",
			doc: &Document{
				Text:   "Trade coverage of the upfronts.",
				Vector: nil,
			},
			wantErr: nil,
		},
		{
			name: "valid document with ID 0",
			doc: &Document{
				Id:   0,
				Text: "Unassigned document.",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "empty text",
			doc:     &Document{Text: ""},
			wantErr: ErrEmptyDocumentText,
		},
		{
			name: "future inserted at",
			doc: &Document{
				Text:       "Document from the future.",
				InsertedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  *EnrichedEntity
		wantErr error
	}{
		{
			name: "valid entity",
			entity: &EnrichedEntity{
				Key:  "person:jane-doe",
				Type: "person",
				Name: "Jane Doe",
			},
			wantErr: nil,
		},
		{
			name:    "nil entity",
			entity:  nil,
			wantErr: ErrInvalidEntity,
		},
		{
			name:    "empty key",
			entity:  &EnrichedEntity{Name: "Jane Doe"},
			wantErr: ErrEmptyEntityKey,
		},
		{
			name:    "empty name",
			entity:  &EnrichedEntity{Key: "person:jane-doe"},
			wantErr: ErrEmptyEntityName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(tt.entity)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntity() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntity() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
