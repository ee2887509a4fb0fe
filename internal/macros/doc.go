// Package macros holds the per-channel order macros and the pipeline that
// runs them.
//
// Every macro runs the same stage sequence
//
//	load -> normalize -> sort_group -> partition -> style -> save
//
// through an operations.Manager. A macro only supplies its Profile (account
// sheets, lookup rule, row numbering) and the channel specific work of the
// normalize, sort_group and style stages. All state of one run lives on a Job,
// so a Macro value is stateless and safe to share between concurrent runs.
package macros
