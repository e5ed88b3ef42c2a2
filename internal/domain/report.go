package domain

// FileLoadResult summarizes one file type's load within a quarter.
type FileLoadResult struct {
	FileType FileType
	Table    string
	Rows     int
	Failures []CheckFailure
}

// QuarterReport aggregates the results of loading one quarter. A report is
// only produced when every requested file type loaded; quality failures are
// carried here rather than raised as errors.
type QuarterReport struct {
	Quarter string
	Results []FileLoadResult
}

// TotalRows sums the row counts across all loaded file types.
func (r QuarterReport) TotalRows() int {
	total := 0
	for _, res := range r.Results {
		total += res.Rows
	}
	return total
}

// Failures flattens the quality failures across all file types.
func (r QuarterReport) Failures() []CheckFailure {
	var failures []CheckFailure
	for _, res := range r.Results {
		failures = append(failures, res.Failures...)
	}
	return failures
}
