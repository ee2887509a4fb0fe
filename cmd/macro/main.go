// Command macro runs the order spreadsheet macros from the command line and
// serves them over HTTP.
//
//	macro erp zigzag orders.xlsx
//	macro bundle gmarket orders.xlsx --csv
//	macro reform ali_export.csv
//	macro batch --dir ./inbox --mode erp --channel brandi
//	macro serve --port 8080
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
