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

// Package rerank reorders retrieved candidates by query-document
// relevance. Two interchangeable backends implement one contract: a
// self-hosted cross-encoder service and a hosted rerank API. A cascade
// chains them with a deterministic identity-order fallback so callers
// never see an empty result for non-empty input.
package rerank
