package macros

import "ordermacro/internal/workbook"

// Positional columns of the marketplace order exports
var (
	colA  = workbook.MustCol("A")
	colB  = workbook.MustCol("B")
	colC  = workbook.MustCol("C")
	colD  = workbook.MustCol("D")
	colE  = workbook.MustCol("E")
	colF  = workbook.MustCol("F")
	colG  = workbook.MustCol("G")
	colH  = workbook.MustCol("H")
	colI  = workbook.MustCol("I")
	colJ  = workbook.MustCol("J")
	colL  = workbook.MustCol("L")
	colM  = workbook.MustCol("M")
	colN  = workbook.MustCol("N")
	colO  = workbook.MustCol("O")
	colP  = workbook.MustCol("P")
	colQ  = workbook.MustCol("Q")
	colR  = workbook.MustCol("R")
	colS  = workbook.MustCol("S")
	colU  = workbook.MustCol("U")
	colV  = workbook.MustCol("V")
	colW  = workbook.MustCol("W")
	colX  = workbook.MustCol("X")
	colZ  = workbook.MustCol("Z")
	colAA = workbook.MustCol("AA")
)
