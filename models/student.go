package models

// NotAvailable is the placeholder used for any field the source page did not
// provide.
const NotAvailable = "N/A"

// Technology is the programme name reported for every result.
const Technology = "Diploma In Engineering"

// SemesterRecord is one row of academic history.
type SemesterRecord struct {
	// Semester is the header text as it appeared, e.g. "3rd Semester".
	Semester string `json:"semester"`

	// Status is free text from the source ("Passed", "Referred", ...).
	Status string `json:"status"`

	// GPA is kept verbatim; the source sometimes emits placeholders.
	GPA string `json:"gpa"`

	// FailedSubjects is populated only for failed or referred semesters.
	FailedSubjects []string `json:"failed_subjects"`
}

// StudentResult is the structured record extracted from a results page.
type StudentResult struct {
	Roll       string `json:"roll"`
	Institute  string `json:"institute"`
	Regulation string `json:"regulation"`
	Technology string `json:"technology"`

	// Semesters preserves the order in which semesters appear on the page.
	Semesters []SemesterRecord `json:"results"`

	LatestGPA    string `json:"latest_gpa"`
	LatestStatus string `json:"latest_status"`
}

// StudentData is StudentResult merged with the stored display metadata.
type StudentData struct {
	Name string `json:"name"`
	Img  string `json:"img"`
	StudentResult
}

// StudentResponse is the response for GET /student/:roll.
type StudentResponse struct {
	Success bool         `json:"success"`
	URL     string       `json:"url,omitempty"`
	Data    *StudentData `json:"data,omitempty"`

	// EngineUsed names the fetch engine that produced the page text.
	EngineUsed string `json:"engine_used,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Timing TimingInfo   `json:"timing"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// StudentRecord is the stored display metadata for a roll number.
type StudentRecord struct {
	Roll string `json:"roll"`
	Name string `json:"name"`
	Img  string `json:"img"`
}

// StudentPostResponse is the response for POST /students/post.
type StudentPostResponse struct {
	Success bool           `json:"success"`
	Student *StudentRecord `json:"student,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}
