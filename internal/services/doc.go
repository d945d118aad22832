// Package services defines shared utilities consumed by the pipeline
// stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and sample IDs
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across stages (which errors abort the
//     run, which fail a single sample branch, which fail an aggregate).
//   - Thin abstractions that make command execution from external
//     bioinformatics tools testable.
//
// Use these helpers when wiring new stage logic so operational
// behaviour (error handling, observability) stays uniform across the
// pipeline.
package services
