// Package docgen drives the documentation pass: it walks the input
// path, parses each Go file, asks the configured model for a doc
// comment per undocumented function, and writes the updated source
// back in place.
//
// File selection lives in internal/scan, comment splicing in
// internal/source, and provider transport in internal/llm; this
// package owns the policy knobs (replace, skip constructors,
// exclusions, dry run) that tie them together.
package docgen
