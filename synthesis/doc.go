// Package synthesis turns a question plus ranked evidence into a
// structured answer. It builds one constrained prompt, invokes the
// LLM once, and parses the reply against a strict JSON contract with
// a raw-text wrap as the malformed-output fallback.
package synthesis
