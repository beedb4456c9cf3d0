package domain

// UnitFailure reports one unit whose batch cycle aborted. Other units in the
// same batch are unaffected.
type UnitFailure struct {
	UnitID string
	Err    error
}

// BatchResult summarizes one processing cycle. Scores and Alerts group by
// unit in first-seen batch order.
type BatchResult struct {
	Scores    []ResonanceScore
	Alerts    []DriftAlert
	Processed int
	Skipped   int
	Failures  []UnitFailure
}
