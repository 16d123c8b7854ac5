// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package greenlight answers natural-language entertainment industry
// questions over a local evidence store. A query flows through intent
// classification, adaptive retrieval breadth, lexical and hypothetical
// expansion, vector retrieval with max-score fusion, a reranking
// cascade, graph entity enrichment, constrained answer synthesis, and
// a hallucination gate. Every stage past construction degrades rather
// than fails: a query always produces an answer-shaped result.
package greenlight

import (
	"context"
	"log/slog"

	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/ai/openai"
	"github.com/poiesic/greenlight/batching"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/enrich"
	"github.com/poiesic/greenlight/ingestion"
	"github.com/poiesic/greenlight/query"
	"github.com/poiesic/greenlight/rerank"
	"github.com/poiesic/greenlight/retrieval"
	"github.com/poiesic/greenlight/storage"
	"github.com/poiesic/greenlight/storage/badger"
	"github.com/poiesic/greenlight/synthesis"
	"github.com/poiesic/greenlight/validate"
)

// Defaults for the assistant.
const (
	DefaultNamespace     = "evidence"
	DefaultMaxExpansions = 3
)

// Answer is the full outcome of one query: the validated answer plus
// the evidence and verdict behind it.
type Answer struct {
	core.SynthesizedAnswer

	Intent  core.IntentTag
	TopK    int
	Results []*core.RankedResult
	Report  *core.HallucinationReport
}

// Assistant owns the storage backend, the model provider, and the
// query pipeline stages. Construction failures are fatal; per-query
// failures degrade.
type Assistant struct {
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	graphRepo storage.GraphRepository
	provider  ai.AIProvider

	namespace     string
	maxExpansions int
	strategy      query.ExpansionStrategy

	topK        *query.TopKController
	expander    *query.Expander
	hyde        *query.HyDEGenerator
	embedder    *batching.EmbedBatcher
	retriever   *retrieval.Retriever
	reranker    rerank.Reranker
	enricher    *enrich.Enricher
	synthesizer *synthesis.Synthesizer
	validator   *validate.Validator

	logger *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	inMemory        bool
	namespace       string
	maxExpansions   int
	strategy        query.ExpansionStrategy
	crossEncoderURL string
	hostedRerankURL string
	hostedRerankKey string
	logger          *slog.Logger
}

// WithAIConfig sets the model provider configuration.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built provider instead of constructing
// one from the AI config.
func WithProvider(provider ai.AIProvider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, discarding data on
// close.
func WithInMemory() AssistantOption {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// WithNamespace sets the evidence namespace queried by default.
func WithNamespace(namespace string) AssistantOption {
	return func(o *assistantOptions) {
		if namespace != "" {
			o.namespace = namespace
		}
	}
}

// WithMaxExpansions bounds lexical variants per query.
func WithMaxExpansions(maxExpansions int) AssistantOption {
	return func(o *assistantOptions) {
		if maxExpansions >= 0 {
			o.maxExpansions = maxExpansions
		}
	}
}

// WithExpansionStrategy picks the synonym breadth per matched term.
func WithExpansionStrategy(strategy query.ExpansionStrategy) AssistantOption {
	return func(o *assistantOptions) {
		o.strategy = strategy
	}
}

// WithCrossEncoder enables the self-hosted cross-encoder rerank path.
func WithCrossEncoder(endpoint string) AssistantOption {
	return func(o *assistantOptions) {
		o.crossEncoderURL = endpoint
	}
}

// WithHostedReranker enables the hosted rerank API path.
func WithHostedReranker(endpoint, apiKey string) AssistantOption {
	return func(o *assistantOptions) {
		o.hostedRerankURL = endpoint
		o.hostedRerankKey = apiKey
	}
}

// WithAssistantLogger overrides the default logger.
func WithAssistantLogger(logger *slog.Logger) AssistantOption {
	return func(o *assistantOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New opens the evidence store at filePath and builds the query
// pipeline. Errors here are configuration errors and abort
// construction; nothing mid-query ever returns them.
func New(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig:      ai.DefaultConfig(),
		namespace:     DefaultNamespace,
		maxExpansions: DefaultMaxExpansions,
		strategy:      query.StrategyBalanced,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	graphRepo := badger.NewGraphRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	a := &Assistant{
		backend:       backend,
		docRepo:       docRepo,
		graphRepo:     graphRepo,
		provider:      provider,
		namespace:     options.namespace,
		maxExpansions: options.maxExpansions,
		strategy:      options.strategy,
		validator:     validate.NewValidator(),
		logger:        options.logger,
	}

	if err := a.buildPipeline(options); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// buildPipeline wires the per-stage components.
func (a *Assistant) buildPipeline(options *assistantOptions) error {
	var err error

	a.topK, err = query.NewTopKController()
	if err != nil {
		return err
	}
	a.expander = query.NewExpander()

	a.hyde, err = query.NewHyDEGenerator(a.provider.Completer(),
		query.WithHyDELogger(a.logger))
	if err != nil {
		return err
	}

	a.embedder, err = batching.NewEmbedBatcher(a.provider.Embedder(), nil)
	if err != nil {
		return err
	}

	a.retriever, err = retrieval.NewRetriever(a.docRepo, a.embedder,
		retrieval.WithLogger(a.logger))
	if err != nil {
		return err
	}

	backends := make([]rerank.Reranker, 0, 2)
	if options.crossEncoderURL != "" {
		ce, ceErr := rerank.NewCrossEncoder(options.crossEncoderURL)
		if ceErr != nil {
			return ceErr
		}
		backends = append(backends, ce)
	}
	if options.hostedRerankURL != "" {
		hosted, hostedErr := rerank.NewHostedReranker(options.hostedRerankURL, options.hostedRerankKey)
		if hostedErr != nil {
			return hostedErr
		}
		backends = append(backends, hosted)
	}
	a.reranker = rerank.NewCascade(a.logger, backends...)

	a.enricher, err = enrich.NewEnricher(a.graphRepo, enrich.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.synthesizer, err = synthesis.NewSynthesizer(a.provider.Completer(),
		synthesis.WithLogger(a.logger))
	if err != nil {
		return err
	}

	return nil
}

// AnswerQuery runs the full pipeline for one query. It always returns
// an answer-shaped result for a valid query; retrieval, rerank, and
// synthesis failures degrade inside their stages.
func (a *Assistant) AnswerQuery(ctx context.Context, q core.Query) (*Answer, error) {
	if err := core.ValidateQuery(&q); err != nil {
		return nil, err
	}

	intent := q.Intent
	if intent == "" {
		intent = query.Classify(q.Text)
	}

	k := a.topK.Compute(q.Text, intent, q.Attributes)

	variants := a.buildVariants(ctx, q.Text, intent)
	results := a.retrieveAndRank(ctx, q.Text, variants, k)

	a.enricher.Enrich(ctx, results)

	synthesized, err := a.synthesizer.Synthesize(ctx, q.Text, results)
	if err != nil {
		a.logger.Warn("synthesis failed, returning degraded answer", "error", err)
		synthesized = degradedAnswer(results)
	}

	report := a.validator.Validate(synthesized.Answer, contextTexts(results))
	synthesized.Answer = report.CleanedAnswer

	return &Answer{
		SynthesizedAnswer: *synthesized,
		Intent:            intent,
		TopK:              k,
		Results:           results,
		Report:            report,
	}, nil
}

// buildVariants assembles the retrieval variants: the original query,
// lexical expansions, and the hypothetical answer.
func (a *Assistant) buildVariants(ctx context.Context, text string, intent core.IntentTag) []core.QueryVariant {
	expanded := a.expander.Expand(text, a.maxExpansions, a.strategy)

	variants := make([]core.QueryVariant, 0, len(expanded)+1)
	variants = append(variants, core.QueryVariant{
		Text:      text,
		Source:    text,
		Technique: core.TechniqueOriginal,
	})
	for _, variant := range expanded[1:] {
		variants = append(variants, core.QueryVariant{
			Text:      variant,
			Source:    text,
			Technique: core.TechniqueSynonym,
		})
	}

	if hypothetical := a.hyde.Generate(ctx, text, intent); hypothetical != "" {
		variants = append(variants, core.QueryVariant{
			Text:      hypothetical,
			Source:    text,
			Technique: core.TechniqueHyDE,
		})
	}
	return variants
}

// retrieveAndRank fans the variants out, fuses the hits, and runs the
// rerank cascade. Failures yield an empty result set, never an error.
func (a *Assistant) retrieveAndRank(ctx context.Context, queryText string, variants []core.QueryVariant, topK int) []*core.RankedResult {
	candidates, err := a.retriever.Retrieve(ctx, variants, topK, a.namespace)
	if err != nil {
		a.logger.Warn("retrieval failed, answering without evidence", "error", err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		texts[i] = candidate.Text
	}

	ordered, err := a.reranker.Rerank(ctx, queryText, texts, topK)
	if err != nil {
		a.logger.Warn("rerank failed, keeping fusion order", "error", err)
		ordered = rerank.FallbackResults(texts, topK)
	}

	results := make([]*core.RankedResult, 0, len(ordered))
	for position, item := range ordered {
		results = append(results, &core.RankedResult{
			CandidateDoc: *candidates[item.Index],
			RerankScore:  item.Score,
			Position:     position,
		})
	}
	return results
}

// degradedAnswer is the synthesis-failure fallback: an honest
// no-answer with the evidence ids still cited.
func degradedAnswer(results []*core.RankedResult) *core.SynthesizedAnswer {
	citations := make([]string, len(results))
	for i, result := range results {
		citations[i] = result.ID
	}
	return &core.SynthesizedAnswer{
		Answer:     "The assistant could not generate an answer for this question right now. The retrieved evidence is listed in the citations.",
		Citations:  citations,
		Confidence: 0,
	}
}

// contextTexts collects the evidence texts the validator checks names
// against.
func contextTexts(results []*core.RankedResult) []string {
	texts := make([]string, 0, len(results)*2)
	for _, result := range results {
		texts = append(texts, result.Text)
		if result.Entity != nil {
			texts = append(texts, "Name: "+result.Entity.Name)
		}
	}
	return texts
}

// DocumentRepository exposes the evidence store.
func (a *Assistant) DocumentRepository() storage.DocumentRepository {
	return a.docRepo
}

// GraphRepository exposes the entity store.
func (a *Assistant) GraphRepository() storage.GraphRepository {
	return a.graphRepo
}

// NewIngestionPipeline creates an ingestion pipeline over the
// assistant's stores and models.
func (a *Assistant) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.docRepo, a.embedder, opts...)
}

// Close releases the pipeline, the provider, and the storage backend.
func (a *Assistant) Close() error {
	if a.retriever != nil {
		a.retriever.Release()
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Error("error closing embed batcher", "err", err)
		}
	}
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
		}
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
