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


// Package storage defines the persistence interfaces consumed by the
// retrieval pipeline.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - VectorSearcher: Vector similarity search over stored documents
//   - DocumentRepository: Operations for evidence documents
//   - GraphRepository: Operations for knowledge-graph entities
//
// The pipeline itself consumes only the two narrow read capabilities
// (VectorSearcher.Search and GraphRepository.GetEntity); the write
// operations serve ingestion and tests. Alternative backends (a hosted
// vector database, a graph database) plug in by implementing these
// interfaces.
//
// # Usage
//
// Create repositories backed by an embedded BadgerDB:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	docRepo, err := badger.NewDocumentRepository(backend)
//	graphRepo := badger.NewGraphRepository(backend)
//
// Use in tests with in-memory storage:
//
//	docRepo, graphRepo, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
