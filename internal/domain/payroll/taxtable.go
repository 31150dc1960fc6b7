package payroll

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Bracket is one row of a progressive tax schedule. Income above Floor is
// taxed at Rate on top of BaseTax.
type Bracket struct {
	Floor   decimal.Decimal
	BaseTax decimal.Decimal
	Rate    decimal.Decimal
}

// TaxTable is a versioned annual income tax schedule. Brackets are kept in
// strictly descending Floor order and evaluated top-down.
type TaxTable struct {
	Version        string
	EffectiveYear  int
	PersonalRelief decimal.Decimal
	EPFReliefCap   decimal.Decimal
	Threshold      decimal.Decimal
	Brackets       []Bracket
}

type taxTableDocument struct {
	Version        string `yaml:"version"`
	EffectiveYear  int    `yaml:"effective_year"`
	PersonalRelief string `yaml:"personal_relief"`
	EPFReliefCap   string `yaml:"epf_relief_cap"`
	Threshold      string `yaml:"threshold"`
	Brackets       []struct {
		Floor   string `yaml:"floor"`
		BaseTax string `yaml:"base_tax"`
		Rate    string `yaml:"rate"`
	} `yaml:"brackets"`
}

//go:embed tax_table_default.yaml
var defaultTaxTableYAML []byte

var defaultTaxTable = sync.OnceValue(func() *TaxTable {
	table, err := ParseTaxTable(defaultTaxTableYAML)
	if err != nil {
		panic("payroll: embedded tax table: " + err.Error())
	}
	return table
})

// DefaultTaxTable returns the embedded schedule. The returned table must
// not be modified.
func DefaultTaxTable() *TaxTable {
	return defaultTaxTable()
}

func LoadTaxTableFile(path string) (*TaxTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tax table: %w", err)
	}
	defer f.Close()
	return LoadTaxTable(f)
}

func LoadTaxTable(r io.Reader) (*TaxTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tax table: %w", err)
	}
	return ParseTaxTable(data)
}

// ParseTaxTable decodes a YAML schedule and validates it.
func ParseTaxTable(data []byte) (*TaxTable, error) {
	var doc taxTableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrInvalidTaxTable, err)
	}

	table := &TaxTable{
		Version:       doc.Version,
		EffectiveYear: doc.EffectiveYear,
	}
	var err error
	if table.PersonalRelief, err = parseAmount("personal_relief", doc.PersonalRelief); err != nil {
		return nil, err
	}
	if table.EPFReliefCap, err = parseAmount("epf_relief_cap", doc.EPFReliefCap); err != nil {
		return nil, err
	}
	if table.Threshold, err = parseAmount("threshold", doc.Threshold); err != nil {
		return nil, err
	}
	for i, b := range doc.Brackets {
		var bracket Bracket
		if bracket.Floor, err = parseAmount(fmt.Sprintf("brackets[%d].floor", i), b.Floor); err != nil {
			return nil, err
		}
		if bracket.BaseTax, err = parseAmount(fmt.Sprintf("brackets[%d].base_tax", i), b.BaseTax); err != nil {
			return nil, err
		}
		if bracket.Rate, err = parseAmount(fmt.Sprintf("brackets[%d].rate", i), b.Rate); err != nil {
			return nil, err
		}
		table.Brackets = append(table.Brackets, bracket)
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrInvalidTaxTable, field)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidTaxTable, field, err)
	}
	return d, nil
}

// Validate checks ordering and monotonicity. Each bracket's base tax must
// be at least what the bracket below it would charge at the same floor,
// otherwise crossing a floor would reduce the tax owed.
func (t *TaxTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidTaxTable)
	}
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidTaxTable)
	}
	if t.PersonalRelief.IsNegative() || t.EPFReliefCap.IsNegative() || t.Threshold.IsNegative() {
		return fmt.Errorf("%w: reliefs and threshold must be non-negative", ErrInvalidTaxTable)
	}
	one := decimal.NewFromInt(1)
	for i, b := range t.Brackets {
		if b.Floor.IsNegative() || b.BaseTax.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative values", ErrInvalidTaxTable, i)
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: bracket %d rate %s outside [0,1]", ErrInvalidTaxTable, i, b.Rate)
		}
		if i == 0 {
			continue
		}
		upper := t.Brackets[i-1]
		if !b.Floor.LessThan(upper.Floor) {
			return fmt.Errorf("%w: bracket floors must be strictly descending (%s after %s)", ErrInvalidTaxTable, b.Floor, upper.Floor)
		}
		if upper.BaseTax.LessThan(b.taxOn(upper.Floor)) {
			return fmt.Errorf("%w: base tax %s at floor %s is below the %s accumulated by the bracket beneath it",
				ErrInvalidTaxTable, upper.BaseTax, upper.Floor, b.taxOn(upper.Floor))
		}
	}
	return nil
}

func (b Bracket) taxOn(chargeable decimal.Decimal) decimal.Decimal {
	return b.BaseTax.Add(chargeable.Sub(b.Floor).Mul(b.Rate))
}

// AnnualTax applies the first bracket whose floor the chargeable income
// exceeds, scanning from the highest floor down.
func (t *TaxTable) AnnualTax(chargeable decimal.Decimal) decimal.Decimal {
	for _, b := range t.Brackets {
		if chargeable.GreaterThan(b.Floor) {
			return b.taxOn(chargeable)
		}
	}
	return decimal.Zero
}

var monthsPerYear = decimal.NewFromInt(12)

// ChargeableIncome annualises a month and subtracts personal and capped
// EPF relief.
func (t *TaxTable) ChargeableIncome(monthlyGross, monthlyEPF decimal.Decimal) decimal.Decimal {
	annualIncome := monthlyGross.Mul(monthsPerYear)
	epfRelief := decimal.Min(monthlyEPF.Mul(monthsPerYear), t.EPFReliefCap)
	return annualIncome.Sub(t.PersonalRelief).Sub(epfRelief)
}

// MonthlyPCB estimates the monthly tax deduction (Potongan Cukai Bulanan)
// rounded to two decimal places. It never returns a negative amount.
func (t *TaxTable) MonthlyPCB(monthlyGross, monthlyEPF decimal.Decimal) decimal.Decimal {
	chargeable := t.ChargeableIncome(monthlyGross, monthlyEPF)
	if chargeable.LessThanOrEqual(t.Threshold) {
		return decimal.Zero
	}
	monthly := t.AnnualTax(chargeable).Div(monthsPerYear)
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return monthly.Round(2)
}

// CalculatePCB runs MonthlyPCB against the embedded default table.
func CalculatePCB(monthlyGross, monthlyEPF decimal.Decimal) decimal.Decimal {
	return DefaultTaxTable().MonthlyPCB(monthlyGross, monthlyEPF)
}
