// Package bundle persists the evidence for one governed run as a
// tamper-evident file set and verifies such bundles later.
//
// A bundle directory holds independently hashable artifacts: decision.json,
// policy.json, metrics.json, the verbatim raw log captures, plus two
// integrity files. Writes are two-phase: every content artifact is written
// first (its digest computed as the bytes are laid down), then hashes.json
// records the SHA-256 of every artifact, and manifest.json is written last
// with the byte length of every file including hashes.json. A crash
// mid-write therefore never produces a manifest that lies about the files
// it lists.
//
// hashes.json cannot cover itself or the manifest written after it; the
// manifest in turn cannot record its own length. Everything else is covered
// both ways, so any later holder can verify the bundle by recomputing
// digests and sizes.
//
// On any write failure the bundle is left exactly as it is: partial bundles
// are forensic evidence and are never cleaned up or silently retried.
package bundle
