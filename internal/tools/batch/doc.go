// Package batch provides helpers for tools that act on several items at once:
// parsing ID lists, running the per-item calls with bounded concurrency and
// reporting partial failures in one JSON summary.
package batch
