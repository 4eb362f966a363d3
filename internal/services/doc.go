// Package services defines shared utilities consumed by the asset pipeline and
// the vendor integrations under internal/services/<vendor>.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures keep a
//     classifiable kind after they cross package boundaries.
//   - StatusCode and IsNotFound, which let callers branch on vendor HTTP
//     failures without knowing the concrete adapter type.
//
// Use these helpers when wiring new vendor clients so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
