package workbook

// Horizontal alignments understood by the writer
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Number formats understood by the writer
const (
	FormatGeneral = "General"
	FormatText    = "@"
	FormatInteger = "0"
)

// Style is a per-cell rendering annotation. Colors are RGB hex without '#'.
// Zero fields mean "inherit".
type Style struct {
	FontName  string
	FontSize  float64
	FontColor string
	Bold      bool
	Fill      string
	Align     string
	NumFmt    string
}

// IsZero reports an empty annotation
func (s Style) IsZero() bool {
	return s == Style{}
}

// Merge overlays the non-zero fields of o onto s
func (s Style) Merge(o Style) Style {
	if o.FontName != "" {
		s.FontName = o.FontName
	}
	if o.FontSize != 0 {
		s.FontSize = o.FontSize
	}
	if o.FontColor != "" {
		s.FontColor = o.FontColor
	}
	if o.Bold {
		s.Bold = true
	}
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	if o.Align != "" {
		s.Align = o.Align
	}
	if o.NumFmt != "" {
		s.NumFmt = o.NumFmt
	}
	return s
}
