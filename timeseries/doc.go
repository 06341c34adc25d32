// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type used by every statistical routine in
// this module, along with CSV loading and the transformations the tests rely on.
//
// # Creating a Series
//
// Create a time series from a slice (the values are copied):
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// # Loading from CSV
//
// Load a single column, or several aligned columns as a Frame:
//
//	series, err := timeseries.LoadCSVColumn("data.csv", "value")
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "y"
//	opts.Columns = []string{"x1", "x2"}
//	frame, err := timeseries.LoadFrame("data.csv", opts)
//	x1, err := frame.Column("x1")
//
// Cells listed in CSVOptions.NAValues load as NaN. Any other cell that does not
// parse as a number is reported as an error with its row and column.
//
// # Transformations
//
//	diff := series.Diff()            // First difference
//	diff2 := series.DiffN(2)         // Second difference
//	sdiff := series.SeasonalDiff(12) // Seasonal difference
//	z := series.Normalize()          // Z-score normalization
//	emb, err := series.Embed(3, 1)   // Time-delay embedding
//	wins := series.Windows(10)       // Non-overlapping windows
//
// # Missing Values
//
// Missing values are kept as NaN until a caller explicitly removes them:
//
//	if series.HasNaN() {
//	    series = series.DropNaN()
//	}
package timeseries
