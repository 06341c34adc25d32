package tsstat

import (
	"fmt"
	"strings"
)

// Category is a family of tests that answer the same yes/no question.
type Category string

const (
	CategoryStationarity       Category = "stationarity"
	CategoryNormality          Category = "normality"
	CategoryLinearity          Category = "linearity"
	CategoryHeteroscedasticity Category = "heteroscedasticity"
	CategoryCorrelation        Category = "correlation"
	CategoryRegularity         Category = "regularity"
	CategorySeasonality        Category = "seasonality"
	CategoryStability          Category = "stability"
)

// Categories lists every category in catalog order.
func Categories() []Category {
	return []Category{
		CategoryStationarity, CategoryNormality, CategoryLinearity, CategoryHeteroscedasticity,
		CategoryCorrelation, CategoryRegularity, CategorySeasonality, CategoryStability,
	}
}

type claim struct {
	def      TestID
	positive string
	negative string
}

var categoryInfo = map[Category]claim{
	CategoryStationarity:       {ADF, "the series is stationary", "the series is not stationary"},
	CategoryNormality:          {DP, "the data are normally distributed", "the data are not normally distributed"},
	CategoryLinearity:          {RR, "the relationship is linear", "the relationship is not linear"},
	CategoryHeteroscedasticity: {BP, "the residuals are heteroscedastic", "the residuals are homoscedastic"},
	CategoryCorrelation:        {ALB, "the series is autocorrelated", "the series is not autocorrelated"},
	CategoryRegularity:         {Sample, "the series is regular", "the series is irregular"},
	CategorySeasonality:        {QS, "the series is seasonal", "the series is not seasonal"},
	CategoryStability:          {StabilityIndex, "the series is stable", "the series is not stable"},
}

// ParseCategory resolves a category name.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := categoryInfo[c]; !ok {
		return "", &UnknownTestError{Category: c}
	}
	return c, nil
}

// Parse resolves a canonical code or alias of a test in c.
func (c Category) Parse(code string) (TestID, error) {
	e, err := builtin.lookup(c, code)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// Tests returns the tests of c in registration order.
func (c Category) Tests() []TestID {
	var ids []TestID
	for _, e := range builtin.entries(c) {
		ids = append(ids, e.ID)
	}
	return ids
}

// Default returns the test used by the category's Is* checker.
func (c Category) Default() TestID { return categoryInfo[c].def }

// TestID is the canonical code of a test.
type TestID string

const (
	ADF  TestID = "adf"
	KPSS TestID = "kpss"
	PP   TestID = "pp"
	ZA   TestID = "za"
	ERS  TestID = "ers"
	VR   TestID = "vr"
	RUR  TestID = "rur"

	DP TestID = "dp"
	JB TestID = "jb"
	OB TestID = "ob"
	SW TestID = "sw"
	AD TestID = "ad"

	RR TestID = "rr"
	HC TestID = "hc"
	LM TestID = "lm"
	RB TestID = "rb"

	BP    TestID = "bp"
	ARCH  TestID = "arch"
	GQ    TestID = "gq"
	White TestID = "white"

	ALB  TestID = "alb"
	ALM  TestID = "alm"
	BGLM TestID = "bglm"
	ACF  TestID = "acf"
	PACF TestID = "pacf"
	CCF  TestID = "ccf"

	Sample   TestID = "sample"
	Approx   TestID = "approx"
	Perm     TestID = "perm"
	Spectral TestID = "spectral"
	SVD      TestID = "svd"

	QS               TestID = "qs"
	OCSB             TestID = "ocsb"
	CH               TestID = "ch"
	SeasonalStrength TestID = "seasonal_strength"

	StabilityIndex TestID = "stability"
	Lumpiness      TestID = "lumpiness"
)

// Adapter invokes one numerical routine on validated input.
type Adapter func(in *Input, o *Options) (RawResult, error)

// Extractor converts an adapter's raw output into a Result.
type Extractor func(raw RawResult) (*Result, error)

// Entry describes one test: what it accepts and how it is run and read.
type Entry struct {
	ID        TestID
	Category  Category
	Aliases   []string
	Shapes    []Shape
	MinLength func(in *Input, o *Options) int // nil means 1
	MinDoc    string                          // MinLength in words, for listings
	Accepts   []string                        // option names
	Requires  []string                        // required option names
	Gaps      bool                            // NaN gaps may be dropped with DropMissing
	Rule      Rule
	Invoke    Adapter
	Extract   Extractor
}

func (e *Entry) minLength(in *Input, o *Options) int {
	if e.MinLength == nil {
		return 1
	}
	return max(1, e.MinLength(in, o))
}

func fixedMin(n int) func(*Input, *Options) int {
	return func(*Input, *Options) int { return n }
}

// Registry is an ordered catalog of tests per category.
type Registry struct {
	byCategory map[Category][]*Entry
	index      map[Category]map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCategory: make(map[Category][]*Entry),
		index:      make(map[Category]map[string]*Entry),
	}
}

// Register adds e to its category. Codes and aliases must be unique within
// the category.
func (r *Registry) Register(e Entry) error {
	if e.ID == "" || e.Category == "" || e.Invoke == nil || e.Extract == nil {
		return fmt.Errorf("tsstat: incomplete registry entry %q", e.ID)
	}
	if len(e.Shapes) == 0 {
		e.Shapes = []Shape{ShapeUnivariate}
	}
	idx := r.index[e.Category]
	if idx == nil {
		idx = make(map[string]*Entry)
		r.index[e.Category] = idx
	}
	names := append([]string{string(e.ID)}, e.Aliases...)
	for _, n := range names {
		if _, dup := idx[n]; dup {
			return fmt.Errorf("tsstat: %s test %q registered twice", e.Category, n)
		}
	}
	entry := &e
	for _, n := range names {
		idx[n] = entry
	}
	r.byCategory[e.Category] = append(r.byCategory[e.Category], entry)
	return nil
}

// Entries returns the entries of c in registration order.
func (r *Registry) Entries(c Category) []Entry {
	out := make([]Entry, 0, len(r.byCategory[c]))
	for _, e := range r.byCategory[c] {
		out = append(out, *e)
	}
	return out
}

func (r *Registry) entries(c Category) []*Entry { return r.byCategory[c] }

func (r *Registry) lookup(c Category, code string) (*Entry, error) {
	idx, ok := r.index[c]
	if !ok {
		return nil, &UnknownTestError{Category: c}
	}
	e, ok := idx[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, &UnknownTestError{Category: c, Test: code}
	}
	return e, nil
}

// builtin is the catalog behind the package-level functions. It is read-only
// once initialised.
var builtin = mustRegistry(
	withCategory(CategoryStationarity, stationarityEntries()),
	withCategory(CategoryNormality, normalityEntries()),
	withCategory(CategoryLinearity, linearityEntries()),
	withCategory(CategoryHeteroscedasticity, heteroscedasticityEntries()),
	withCategory(CategoryCorrelation, correlationEntries()),
	withCategory(CategoryRegularity, regularityEntries()),
	withCategory(CategorySeasonality, seasonalityEntries()),
	withCategory(CategoryStability, stabilityEntries()),
)

func withCategory(c Category, entries []Entry) []Entry {
	for i := range entries {
		entries[i].Category = c
	}
	return entries
}

func mustRegistry(groups ...[]Entry) *Registry {
	r := NewRegistry()
	for _, g := range groups {
		for _, e := range g {
			if err := r.Register(e); err != nil {
				panic(err)
			}
		}
	}
	return r
}

// Catalog returns the built-in entries of c in registration order.
func Catalog(c Category) []Entry { return builtin.Entries(c) }
