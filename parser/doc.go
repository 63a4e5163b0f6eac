// Package parser recovers a structured file set from free-form model output.
//
// Models wrap their answers in prose, markdown fences, apologies, and
// trailing commentary. The recovery strategy is deliberately blunt: take the
// substring from the first '{' to the last '}' inclusive and attempt a
// validated decode of it as a fileset.FileSet. Anything that fails decoding
// or validation is reported as ErrParseFailure, a recoverable signal for
// the retry controller, never a crash.
package parser
