// Package triage turns the polled open-alert feed into a priority-ordered,
// policy-gated, deduplicated live view. It defines the pure Triage function
// (sorting, novelty detection, watermark advancement), the stateful Feed
// (watermark + local dismissals across polls), and the subsystem metrics.
package triage
