// Package codemod is an LLM-driven code modification tool.
//
// codemod takes a natural-language instruction, snapshots the current
// project's source files, sends both to an OpenAI-compatible chat
// completions endpoint, and applies the file set the model proposes back
// to disk, optionally committing the result with git.
//
// The repository is organized as small, independently usable packages:
//
//   - snapshot: walk a project tree into an ordered list of file records
//   - prompt: build the system/user messages sent to the model
//   - provider: provider-agnostic completion client interface and registry
//   - openai: HTTP client for OpenAI-compatible chat completions APIs
//   - parser: recover a structured file set from free-form model output
//   - apply: materialize a file set to disk, one atomic write per file
//   - runner: the retry/progress controller orchestrating a full run
//   - vcs: the git guard/committer collaborator
//   - tokens, truncate, model: token estimation, log excerpts, escalation
//
// # Quick Start
//
//	cfg, _ := config.Load("", ".")
//	client, _ := provider.New(cfg.Provider, cfg.ProviderConfig())
//	r, _ := runner.New(cfg, ".", client)
//	result, err := r.Run(ctx, "add a --version flag")
//
// # Design Philosophy
//
//   - The model's output is untrusted text until it survives a validated
//     decode; a malformed completion costs one retry, never a crash.
//   - Each file write is all-or-nothing; a failed run never leaves a
//     half-written file behind.
//   - Proposed paths are confined to the project root.
package codemod
