// Package sim is the real-time engine: it paces fixed-step integration of
// circulation instances against wall-clock frames, commits parameter edits
// at cardiac phase boundaries, and retains a bounded rolling window of
// outputs per instance for downstream consumers.
package sim
