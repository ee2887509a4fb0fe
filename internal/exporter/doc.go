// Package exporter writes finished macro workbooks as per-sheet CSV files.
//
// CSVWriter is the low level writer with optional UTF-8 BOM so Excel opens
// Hangul text correctly. SheetExporter turns every sheet of a document into
// "<base>_<sheet>.csv" next to the saved workbook.
//
//	exp := exporter.NewSheetExporter(logger)
//	files, err := exp.Export(ctx, doc, "out/orders_매크로_완료.xlsx")
package exporter
