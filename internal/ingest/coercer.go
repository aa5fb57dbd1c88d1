package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobmetrics/domain/table"

	"github.com/xuri/excelize/v2"
)

// TypeCoercer turns raw sheet cells into typed values. Every conversion is
// best-effort: a cell that cannot be converted becomes missing, never an error.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	NullTokens      []string `json:"null_tokens"`      // literal strings treated as missing after cleanup
	DateLayouts     []string `json:"date_layouts"`     // tried in order; day-first layouts come first
	MinExcelSerial  float64  `json:"min_excel_serial"` // numeric dates outside this range are rejected
	MaxExcelSerial  float64  `json:"max_excel_serial"`
	CurrencySymbols []string `json:"currency_symbols"`
}

// DefaultCoercionConfig returns the rules used for the studio workbook
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NullTokens: []string{"nan", "NaT", "None", ""},
		DateLayouts: []string{
			"02/01/2006",
			"2/1/2006",
			"02-01-2006",
			"2-1-2006",
			"02.01.2006",
			"02/01/06",
			"2/1/06",
			"02/01/2006 15:04:05",
			"02/01/2006 15:04",
			"2006-01-02",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			time.RFC3339,
			"2006/01/02",
			// month-first only reached when day-first cannot apply (e.g. 03/15/2024)
			"01/02/2006",
			"1/2/2006",
		},
		MinExcelSerial:  1,
		MaxExcelSerial:  2958465, // 9999-12-31
		CurrencySymbols: []string{"€", "$", "£", "EUR", "USD", "GBP"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	defaultCoercer   = NewTypeCoercer(DefaultCoercionConfig())
	thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// CleanText collapses whitespace runs, trims the ends and maps null-like
// tokens to missing. Non-string cells are converted to their string form.
func (c *TypeCoercer) CleanText(v table.Value) table.Value {
	if v.IsMissing() {
		return table.Missing()
	}
	s := whitespaceRun.ReplaceAllString(v.String(), " ")
	s = strings.TrimSpace(s)
	for _, tok := range c.config.NullTokens {
		if s == tok {
			return table.Missing()
		}
	}
	return table.NewStringValue(s)
}

// CoerceNumeric converts a cell to a number. Currency symbols, parenthesised
// negatives and European decimal commas are understood.
func (c *TypeCoercer) CoerceNumeric(v table.Value) table.Value {
	if v.IsNumeric() {
		if f, _ := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return table.Missing()
		}
		return v
	}
	if !v.IsString() {
		return table.Missing()
	}
	if f, ok := c.parseNumber(v.AsString()); ok {
		return table.NewNumericValue(f)
	}
	return table.Missing()
}

// ParseDate converts a cell to a timestamp. Ambiguous numeric dates are read
// day-first; plain numbers are taken as Excel date serials.
func (c *TypeCoercer) ParseDate(v table.Value) table.Value {
	switch {
	case v.IsTimestamp():
		return v
	case v.IsNumeric():
		return c.fromSerial(v.AsFloat64())
	case !v.IsString():
		return table.Missing()
	}

	s := strings.TrimSpace(v.AsString())
	if s == "" {
		return table.Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return c.fromSerial(f)
	}
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return table.NewTimestampValue(t)
		}
	}
	return table.Missing()
}

func (c *TypeCoercer) fromSerial(serial float64) table.Value {
	if math.IsNaN(serial) || serial < c.config.MinExcelSerial || serial > c.config.MaxExcelSerial {
		return table.Missing()
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return table.Missing()
	}
	return table.NewTimestampValue(t)
}

// parseNumber applies the numeric cleanup rules to one string
func (c *TypeCoercer) parseNumber(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range c.config.CurrencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last; 1,234.56 otherwise
		commaIdx := strings.LastIndex(cleanVal, ",")
		if commaIdx > strings.LastIndex(cleanVal, ".") && isDigits(cleanVal[commaIdx+1:]) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		if thousandsGrouped.MatchString(cleanVal) && strings.Count(cleanVal, ",") > 1 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeTextColumn applies CleanText to every cell of column, if present.
func NormalizeTextColumn(t *table.Table, column string) {
	t.MapColumn(column, defaultCoercer.CleanText)
}

// NormalizeNumericColumn applies CoerceNumeric to every cell of column, if present.
func NormalizeNumericColumn(t *table.Table, column string) {
	t.MapColumn(column, defaultCoercer.CoerceNumeric)
}

// NormalizeDateColumn applies ParseDate to every cell of column, if present.
func NormalizeDateColumn(t *table.Table, column string) {
	t.MapColumn(column, defaultCoercer.ParseDate)
}

// CleanText runs the default coercer's text cleanup on one cell.
func CleanText(v table.Value) table.Value { return defaultCoercer.CleanText(v) }

// CoerceNumeric runs the default coercer's numeric conversion on one cell.
func CoerceNumeric(v table.Value) table.Value { return defaultCoercer.CoerceNumeric(v) }

// ParseDate runs the default coercer's date conversion on one cell.
func ParseDate(v table.Value) table.Value { return defaultCoercer.ParseDate(v) }
