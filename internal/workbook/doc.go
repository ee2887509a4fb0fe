// Package workbook is the in-memory model of an order spreadsheet.
//
// A Document owns named Sheets. Each Sheet has a header row fixed at load
// time and a mutable list of Rows whose cells are absent, integer, decimal or
// string values. Every row always has exactly one cell per header.
//
// Style annotations ride along with each row so that reorders, deletions and
// partition copies keep them attached to the right data. Styles are output
// metadata only and are consumed by the xlsx writer.
//
// Loading supports .xlsx/.xlsm through excelize and .csv in UTF-8 or EUC-KR.
//
//	doc, err := workbook.Load("orders.xlsx")
//	sheet, err := doc.DataSheet("")
//	sheet.Row(0).Set(workbook.MustCol("D"), workbook.Int(3000))
//	err = workbook.Save(doc, "orders_매크로_완료.xlsx")
package workbook
