package macros

import (
	"fmt"
	"sort"

	"ordermacro/internal/engine"
	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/workbook"
	"ordermacro/pkg/contracts/domain"
)

// AutomationSheet receives every processed row
const AutomationSheet = "자동화"

// Macro is the channel specific part of a run
type Macro interface {
	Profile() Profile
	// Normalize rewrites cell values before any reordering
	Normalize(j *Job) error
	// SortGroup reorders rows and collapses duplicates
	SortGroup(j *Job) error
	// Compute writes the final values of every output sheet. Number formats
	// are set together with the values that need them.
	Compute(j *Job) error
	// Style annotates the output sheets and never changes a value
	Style(j *Job) error
}

// TagMatch selects how the account of a row is read from column B
type TagMatch int

const (
	// MatchLeadingTag reads the "[name]" prefix
	MatchLeadingTag TagMatch = iota
	// MatchAnyTag reads the first "[name]" anywhere in the value
	MatchAnyTag
	// MatchSubstring checks whether the account name appears anywhere
	MatchSubstring
	// MatchBracketSubstring checks whether "[name]" appears anywhere
	MatchBracketSubstring
)

// RowNumbering is how column A is filled
type RowNumbering int

const (
	NumberValues RowNumbering = iota
	NumberFormulas
)

// Account maps one account tag to its destination sheet
type Account struct {
	Tag   string
	Sheet string
}

// LookupRule enriches Target from the lookup table keyed by Key
type LookupRule struct {
	Key    int
	Target int
	// Default is written on a miss; nil leaves the target untouched
	Default *string
	// Always writes Default to every row when no table was supplied
	Always bool
}

// Profile holds the declarative parameters of a macro
type Profile struct {
	Mode    domain.Mode
	Channel domain.Channel

	// Sheets are the partition destinations in output order
	Sheets   []string
	Accounts []Account
	Match    TagMatch
	// CreateEmpty creates every destination sheet even without rows
	CreateEmpty bool
	// SheetSort reorders each destination sheet after partitioning
	SheetSort engine.SortSpec

	AutomationNumbers RowNumbering
	SheetNumbers      RowNumbering

	Lookup *LookupRule
}

// Key identifies the macro in registries and logs
func (p Profile) Key() string {
	return string(p.Mode) + "/" + string(p.Channel)
}

// AccountMap returns the accounts as a tag -> sheet map
func (p Profile) AccountMap() map[string]string {
	out := make(map[string]string, len(p.Accounts))
	for _, a := range p.Accounts {
		out[a.Tag] = a.Sheet
	}
	return out
}

// withAccounts overlays extra tag -> sheet mappings. Built-in accounts keep
// their position, new ones follow in tag order.
func (p Profile) withAccounts(extra map[string]string) Profile {
	if len(extra) == 0 {
		return p
	}
	accounts := make([]Account, 0, len(p.Accounts)+len(extra))
	seen := make(map[string]bool, len(p.Accounts))
	for _, a := range p.Accounts {
		if sheet, ok := extra[a.Tag]; ok {
			a.Sheet = sheet
		}
		seen[a.Tag] = true
		accounts = append(accounts, a)
	}
	tags := make([]string, 0, len(extra))
	for tag := range extra {
		if !seen[tag] {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	for _, tag := range tags {
		accounts = append(accounts, Account{Tag: tag, Sheet: extra[tag]})
	}
	p.Accounts = accounts

	sheets := append([]string(nil), p.Sheets...)
	known := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		known[s] = true
	}
	for _, a := range accounts {
		if !known[a.Sheet] {
			known[a.Sheet] = true
			sheets = append(sheets, a.Sheet)
		}
	}
	p.Sheets = sheets
	return p
}

// classifier builds the partition classifier for column B
func (p Profile) classifier() engine.Classifier {
	switch p.Match {
	case MatchAnyTag:
		return engine.ByBracketTag(colB, p.AccountMap())
	case MatchSubstring, MatchBracketSubstring:
		ruleSet := make([]engine.SubstringRule, 0, len(p.Accounts))
		for _, a := range p.Accounts {
			needle := a.Tag
			if p.Match == MatchBracketSubstring {
				needle = "[" + a.Tag + "]"
			}
			ruleSet = append(ruleSet, engine.SubstringRule{Needle: needle, Sheet: a.Sheet})
		}
		return engine.BySubstring(colB, ruleSet...)
	}
	return engine.ByAccountTag(colB, p.AccountMap())
}

func numberRows(sheet *workbook.Sheet, how RowNumbering) {
	if how == NumberFormulas {
		engine.RowFormulas(sheet, colA)
		return
	}
	engine.RowNumbers(sheet, colA)
}

var builtin = []Macro{
	erpEtc{},
	erpZigzag{},
	erpAli{},
	erpBrandi{},
	erpGmarket{},
	bundleEtc{},
	bundleZigzag{},
	bundleAli{},
	bundleBrandi{},
	bundleGmarket{},
}

// All returns every built-in macro, erp first, channels in menu order
func All() []Macro {
	out := make([]Macro, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup returns the macro for mode and channel
func Lookup(mode domain.Mode, channel domain.Channel) (Macro, error) {
	for _, m := range builtin {
		p := m.Profile()
		if p.Mode == mode && p.Channel == channel {
			return m, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("macro %s/%s", mode, channel))
}

func strPtr(s string) *string { return &s }
