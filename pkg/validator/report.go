package validator

// Report is the outcome of validating one document. Warnings never affect
// validity.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func newReport() *Report {
	return &Report{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

func (r *Report) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

func (r *Report) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// CohortReport is the outcome of validating a group of documents together.
type CohortReport struct {
	Valid   bool               `json:"valid"`
	Reports map[string]*Report `json:"reports"`
}
