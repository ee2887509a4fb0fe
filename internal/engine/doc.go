// Package engine implements the row algorithms shared by every channel macro:
// multi-key sorting, derived cost columns, lookup enrichment, group-by merge,
// account partitioning and the cross-row accumulators threaded through scans.
//
// All functions operate on a single workbook.Document owned by the caller and
// never retain references to it.
package engine
