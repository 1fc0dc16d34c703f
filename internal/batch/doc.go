// Package batch splits large slices into fixed-size batches and processes them
// sequentially or on a bounded number of goroutines.
//
// The terminal UI uses it to measure card heights for long timelines ahead of
// time: Map renders batches concurrently and returns results in input order so
// they can be applied to a single-owner virtual.State afterwards.
package batch
