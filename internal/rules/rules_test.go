package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"ordermacro/internal/workbook"
)

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		name       string
		in         workbook.Cell
		want       workbook.Cell
		wantFormat string
		wantOK     bool
	}{
		{"thousands separator", workbook.Text("12,345"), workbook.Int(12345), workbook.FormatInteger, true},
		{"zero is a value", workbook.Text("0"), workbook.Int(0), workbook.FormatInteger, true},
		{"padded", workbook.Text(" 3000 "), workbook.Int(3000), workbook.FormatInteger, true},
		{"sixteen digits stay text", workbook.Text("1234567890123456"), workbook.Text("1234567890123456"), workbook.FormatText, true},
		{"fifteen digits convert", workbook.Text("123456789012345"), workbook.Int(123456789012345), workbook.FormatInteger, true},
		{"empty string unchanged", workbook.Text(""), workbook.Text(""), "", false},
		{"absent unchanged", workbook.Empty(), workbook.Empty(), "", false},
		{"separator only", workbook.Text(","), workbook.Text(","), "", false},
		{"letters unchanged", workbook.Text("12개"), workbook.Text("12개"), "", false},
		{"dash unchanged", workbook.Text("010-1234"), workbook.Text("010-1234"), "", false},
		{"integer stays", workbook.Int(7), workbook.Int(7), "", false},
		{"integral decimal becomes int", workbook.Dec(decimal.RequireFromString("3000.0")), workbook.Int(3000), workbook.FormatInteger, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, ok := CoerceNumeric(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01012345678", "010-1234-5678"},
		{"010 1234 5678", "010-1234-5678"},
		{"016-123-45678", "016-1234-5678"},
		{"050412345678", "0504-1234-5678"},
		{"0212345678", "02-1234-5678"},
		{"0311234567", "031-123-4567"},
		{"0641234567", "064-123-4567"},
		{"021234567", "02-123-4567"},
		{"0701234567", "0701234567"},
		{"12345", "12345"},
		{"+82 10 1234", "+82 10 1234"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.in))
		})
	}
}

func TestFormatPhone_Idempotent(t *testing.T) {
	for _, raw := range []string{"01012345678", "050412345678", "0212345678", "0311234567", "021234567", "1588-1234"} {
		once := FormatPhone(raw)
		assert.Equal(t, once, FormatPhone(once), raw)
	}
}

func TestFormatPhoneCell(t *testing.T) {
	assert.Equal(t, workbook.Text("010-1234-5678"), FormatPhoneCell(workbook.Text("01012345678")))
	assert.True(t, FormatPhoneCell(workbook.Empty()).IsEmpty())
	assert.Equal(t, workbook.Int(12345), FormatPhoneCell(workbook.Int(12345)))
}

func TestNormalizeMobileAndLeadingZero(t *testing.T) {
	assert.Equal(t, "010-1234-5678", NormalizeMobile("1012345678"))
	assert.Equal(t, "010-1234-5678", NormalizeMobile("0101234-5678"))
	assert.Equal(t, "123", NormalizeMobile("1-2-3"))

	assert.Equal(t, "010-1234-5678", RestoreLeadingZero("1012345678"))
	assert.Equal(t, "010-1234-5678", RestoreLeadingZero("010-1234-5678"))
	assert.Equal(t, "0212345678", RestoreLeadingZero("02-1234-5678"))
}

func TestSlashSum(t *testing.T) {
	tests := []struct {
		name   string
		in     workbook.Cell
		want   workbook.Cell
		wantOK bool
	}{
		{"parts summed", workbook.Text("1000/2000/500"), workbook.Int(3500), true},
		{"negative part", workbook.Text("216/-56"), workbook.Int(160), true},
		{"decimal parts", workbook.Text("0.5/1"), workbook.Dec(decimal.RequireFromString("1.5")), true},
		{"empty parts skipped", workbook.Text("3000/"), workbook.Int(3000), true},
		{"single money value", workbook.Text("12,345원"), workbook.Int(12345), true},
		{"non numeric residue", workbook.Text("무료/없음"), workbook.Text("무료/없음"), false},
		{"zero text kept", workbook.Text("0"), workbook.Text("0"), false},
		{"number kept", workbook.Int(500), workbook.Int(500), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SlashSum(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s (%s)", got, got.Kind())
		})
	}
}

func TestFirstSlashPart(t *testing.T) {
	got, ok := FirstSlashPart(workbook.Text("0/3000/2500"))
	assert.True(t, ok)
	assert.Equal(t, workbook.Int(3000), got)

	got, ok = FirstSlashPart(workbook.Text("0/0"))
	assert.True(t, ok)
	assert.Equal(t, workbook.Int(0), got)

	got, ok = FirstSlashPart(workbook.Int(2500))
	assert.False(t, ok)
	assert.Equal(t, workbook.Int(2500), got)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "티셔츠", StripSingleQuantity("티셔츠 1개"))
	assert.Equal(t, "티셔츠 + 바지 2개", JoinLabels("티셔츠 1개/바지 2개"))
	assert.Equal(t, "A + B", JoinLabels("A;B"))
	assert.Equal(t, "양말 3개 + 모자", QuantityLabel("양말*3/모자 * 1"))
	assert.Equal(t, "컵 2개", SplitQuantitySuffix("컵 * 2"))
	assert.Equal(t, "컵", SplitQuantitySuffix("컵 * 1"))
	assert.Equal(t, "컵 * 많이", SplitQuantitySuffix("컵 * 많이"))
	assert.Equal(t, 2, CountedParts("양말 3개 + 모자 2개 + 컵"))
	assert.Equal(t, "주문번호", Truncate("주문번호12345", 4))
}

func TestShouldHighlight(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"None", true},
		{"###", true},
		{"12", true},
		{"3개", true},
		{"티셔츠", false},
		{"티셔츠 3개", false},
		{"개", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldHighlight(tt.in))
		})
	}

	assert.False(t, HighlightCell(workbook.Empty()))
	assert.True(t, HighlightCell(workbook.Text("")))
	assert.True(t, HighlightCell(workbook.Int(4)))
}

func TestAddJejuMarker_Idempotent(t *testing.T) {
	once := AddJejuMarker("감귤 박스")
	assert.Equal(t, "감귤 박스 [3000원 연락해야함]", once)
	assert.Equal(t, once, AddJejuMarker(once))
	assert.Equal(t, "", AddJejuMarker(""))
}

func TestPaymentRule(t *testing.T) {
	v, red := PaymentRule("신용")
	assert.Equal(t, "", v)
	assert.False(t, red)

	v, red = PaymentRule("착불")
	assert.Equal(t, "착불", v)
	assert.True(t, red)

	v, red = PaymentRule("선불")
	assert.Equal(t, "선불", v)
	assert.False(t, red)
}

func TestAccountTag(t *testing.T) {
	assert.Equal(t, "오케이마트", AccountTag("[오케이마트] 스마트스토어"))
	assert.Equal(t, "", AccountTag("스마트스토어 [오케이마트]"))
	assert.Equal(t, "", AccountTag(""))
	assert.Equal(t, "오케이마트", BracketTag("스마트스토어 [오케이마트]"))

	decomposed := norm.NFD.String("[아이예스] 쿠팡")
	assert.Equal(t, "아이예스", AccountTag(decomposed))
	assert.True(t, ContainsSite(norm.NFD.String("톡스토어"), "톡스토어"))

	site, ok := FirstSite("[오케이마트] 카카오선물하기", []string{"쿠팡", "카카오선물하기"})
	assert.True(t, ok)
	assert.Equal(t, "카카오선물하기", site)
}
