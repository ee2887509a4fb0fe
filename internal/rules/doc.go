// Package rules holds the stateless, single-cell transforms shared by every
// channel macro: numeric coercion, phone formatting, slash sums, label cleanup
// and the highlight predicate. Nothing here looks at other rows.
package rules
