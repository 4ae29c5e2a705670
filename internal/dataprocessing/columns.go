package dataprocessing

// Dataset column names
const (
	ColumnEconomy     = "economy"
	ColumnYear        = "year"
	ColumnIncomeGroup = "income_group"
	ColumnRegion      = "region"
)

// World Bank income classifications
const (
	IncomeLow         = "Low income"
	IncomeLowerMiddle = "Lower middle income"
	IncomeUpperMiddle = "Upper middle income"
	IncomeHigh        = "High income"
)

// DefaultRegionalMetrics are the indicators summarized by the regional report
var DefaultRegionalMetrics = []string{
	"gdp_per_capita_ppp",
	"co2_emissions_per_capita",
	"lpi_overall_score",
}

// MissingTokens are cell values read as missing
var MissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "#N/A", "<NA>"}

// categoricalColumns are always read as text, whatever their content
var categoricalColumns = []string{ColumnEconomy, ColumnIncomeGroup, ColumnRegion}

// growthSuffix is appended to a column name to name its growth series
const growthSuffix = "_growth"
