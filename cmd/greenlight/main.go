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


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/greenlight"
	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "greenlight",
		Usage: "Entertainment industry question answering over a local evidence store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a natural-language question against the evidence store",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Evidence namespace to query",
						Value: greenlight.DefaultNamespace,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Completion model name",
					},
					&cli.StringFlag{
						Name:  "cross-encoder",
						Usage: "Self-hosted cross-encoder rerank endpoint",
					},
					&cli.StringFlag{
						Name:  "rerank-url",
						Usage: "Hosted rerank API endpoint",
					},
					&cli.StringFlag{
						Name:  "rerank-key",
						Usage: "API key for the hosted rerank endpoint",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall deadline for answering the question",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest evidence documents, one per line",
				ArgsUsage: "[FILE]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "namespace",
						Usage: "Evidence namespace to ingest into",
						Value: greenlight.DefaultNamespace,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source tag recorded on each document",
						Value: "manual",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents per ingest batch",
						Value: 16,
					},
				},
			},
			{
				Name:      "put-entity",
				Usage:     "Add or replace an entity in the graph store",
				ArgsUsage: "KEY NAME",
				Action:    putEntityCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Entity type (person, company, title)",
						Value: "person",
					},
					&cli.StringSliceFlag{
						Name:  "attr",
						Usage: "Entity attribute as key=value (repeatable)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	opts := []greenlight.AssistantOption{
		greenlight.WithAIConfig(aiConfigFromFlags(c)),
		greenlight.WithNamespace(c.String("namespace")),
	}
	if endpoint := c.String("cross-encoder"); endpoint != "" {
		opts = append(opts, greenlight.WithCrossEncoder(endpoint))
	}
	if endpoint := c.String("rerank-url"); endpoint != "" {
		opts = append(opts, greenlight.WithHostedReranker(endpoint, c.String("rerank-key")))
	}

	assistant, err := greenlight.New(c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open assistant: %w", err)
	}
	defer assistant.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	answer, err := assistant.AnswerQuery(ctx, core.Query{Text: question})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(answer.Answer)

	if len(answer.Citations) > 0 {
		fmt.Println()
		fmt.Println("Citations:")
		for _, citation := range answer.Citations {
			fmt.Printf("  %s\n", citation)
		}
	}
	if len(answer.FollowUpQuestions) > 0 {
		fmt.Println()
		fmt.Println("Follow-up questions:")
		for _, followUp := range answer.FollowUpQuestions {
			fmt.Printf("  - %s\n", followUp)
		}
	}

	fmt.Fprintf(os.Stderr, "\nintent=%s top_k=%d results=%d confidence=%.2f valid=%t\n",
		answer.Intent, answer.TopK, len(answer.Results), answer.Confidence, answer.Report.IsValid)
	return nil
}

func ingestCommand(c *cli.Context) error {
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	assistant, err := greenlight.New(c.String("db"),
		greenlight.WithAIConfig(aiConfigFromFlags(c)),
		greenlight.WithNamespace(c.String("namespace")),
	)
	if err != nil {
		return fmt.Errorf("failed to open assistant: %w", err)
	}
	defer assistant.Close()

	pipeline, err := assistant.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	input := os.Stdin
	if c.Args().Len() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	ctx := context.Background()
	namespace := c.String("namespace")
	ingestOpts := &ingestion.IngestOptions{
		Metadata: core.DocMetadata{Source: c.String("source")},
	}

	total := 0
	batch := make([]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := pipeline.Ingest(ctx, namespace, batch, ingestOpts); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		batch = append(batch, line)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "ingested %d documents into namespace %q\n", total, namespace)
	return nil
}

func putEntityCommand(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return fmt.Errorf("usage: put-entity KEY NAME")
	}
	key := c.Args().Get(0)
	name := strings.Join(c.Args().Slice()[1:], " ")

	attributes := make(map[string]string)
	for _, pair := range c.StringSlice("attr") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid attribute %q: expected key=value", pair)
		}
		attributes[k] = v
	}

	assistant, err := greenlight.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open assistant: %w", err)
	}
	defer assistant.Close()

	entity := &core.EnrichedEntity{
		Key:        key,
		Type:       c.String("type"),
		Name:       name,
		Attributes: attributes,
	}
	if _, err := assistant.GraphRepository().PutEntities(context.Background(), entity); err != nil {
		return fmt.Errorf("failed to store entity: %w", err)
	}

	fmt.Fprintf(os.Stderr, "stored entity %s (%s)\n", key, name)
	return nil
}

// aiConfigFromFlags builds the provider config from the shared CLI
// flags, falling back to defaults for anything unset.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if c.IsSet("completion-model") {
		opts = append(opts, ai.WithCompletionModel(c.String("completion-model")))
	}
	return ai.NewConfig(opts...)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
