// Package rag implements the retrieval-augmented answering core.
//
// A request flows through one Pipeline:
//
//	query
//	  |
//	  v
//	language.Classify ──> Registry.Ensure(lang) ──> Bundle{retriever, generator}
//	  |                                                  |
//	  v                                                  v
//	history.FormatRecent ──> prompt.Compose ──> retrieve top-k ──> generate
//	                                                               |
//	                                                               v
//	                                              Sanitize ──> history.Append ──> Result
//
// The Registry owns one immutable Bundle per language, constructed at
// most once (eagerly via Preload or lazily on first query). The Pipeline
// holds no per-request state beyond its arguments; prompts are fresh
// values per call and bundles are never mutated after construction.
package rag
