package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID in the decimal form used by retrieval backends.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IntentTag is a coarse label describing what a query is asking for.
type IntentTag string

const (
	// IntentPitch asks where or how to pitch a project.
	IntentPitch IntentTag = "PITCH"
	// IntentTrend asks about market or content trends.
	IntentTrend IntentTag = "TREND"
	// IntentPerson asks about a specific individual.
	IntentPerson IntentTag = "PERSON"
	// IntentDeal asks about deals, sales, or acquisitions.
	IntentDeal IntentTag = "DEAL"
	// IntentComparison asks to compare two or more things.
	IntentComparison IntentTag = "COMPARISON"
	// IntentRouting asks who to contact or send something to.
	IntentRouting IntentTag = "ROUTING"
	// IntentClarification is a short follow-up on an earlier exchange.
	IntentClarification IntentTag = "CLARIFICATION"
	// IntentGeneral is the default when no rule matches.
	IntentGeneral IntentTag = "GENERAL"
)

// Query is a raw user question plus its session context.
// A Query is created once per request and never mutated.
type Query struct {
	Text       string
	Intent     IntentTag         // empty means "classify for me"
	Attributes map[string]string // declared attributes, e.g. "region", "genre", "format"
}

// QueryVariant is one lexical form of a query used for retrieval.
// Variants are produced by the expander and the HyDE generator and are
// discarded after fusion.
type QueryVariant struct {
	Text      string
	Source    string // the original query text this variant was derived from
	Technique string // "original", "synonym", "abbreviation", "hyde"
}

// VariantTechnique values used in QueryVariant.Technique.
const (
	TechniqueOriginal     = "original"
	TechniqueSynonym      = "synonym"
	TechniqueAbbreviation = "abbreviation"
	TechniqueHyDE         = "hyde"
)

// DocMetadata is the known metadata schema carried by retrieved documents.
// Unrecognized backend keys are preserved in Extra for forward compatibility.
type DocMetadata struct {
	Source   string
	Title    string
	Region   string
	Genre    string
	EntityID string // foreign key into the graph store; empty when unlinked
	Extra    map[string]string
}

// CandidateDoc is one retrieved vector hit. Candidates are deduplicated by
// ID during fusion, keeping the hit with the maximum score.
type CandidateDoc struct {
	ID       string
	Score    float32
	Text     string
	Metadata DocMetadata
}

// RankedResult is a candidate after the reranking cascade.
type RankedResult struct {
	CandidateDoc
	RerankScore float32
	Position    int
	Entity      *EnrichedEntity // attached by enrichment for a small head of the list
}

// EnrichedEntity is a structured graph fact linked to a result.
type EnrichedEntity struct {
	Key        string // stable graph-store key, e.g. "person:jane-doe"
	Type       string // "person", "company", "title"
	Name       string
	Attributes map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// EntityMention is a named entity the model referenced in its answer.
type EntityMention struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Relevance string `json:"relevance"`
}

// SynthesizedAnswer is the structured output of answer synthesis.
// The hallucination validator may rewrite Answer before it is returned.
type SynthesizedAnswer struct {
	Answer            string
	Citations         []string // always a subset of the result IDs fed to synthesis
	Entities          []EntityMention
	Confidence        float64 // in [0, 1]
	FollowUpQuestions []string
}

// HallucinationReport is the validator's verdict on a synthesized answer.
type HallucinationReport struct {
	IsValid           bool
	HallucinatedNames []string
	CleanedAnswer     string
	ContextNames      []string
}

// Document is a stored evidence document with its embedding vector.
type Document struct {
	Id         ID
	Text       string
	Namespace  string
	Vector     []float32 // unit-normalized embedding; empty until embedded
	Metadata   DocMetadata
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Candidate converts a stored document into the retrieval hit shape.
func (d *Document) Candidate(score float32) *CandidateDoc {
	return &CandidateDoc{
		ID:       d.Id.String(),
		Score:    score,
		Text:     d.Text,
		Metadata: d.Metadata,
	}
}
