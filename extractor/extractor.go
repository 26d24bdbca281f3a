// Package extractor turns the visible text of a results page into a
// structured academic record.
//
// The page has no stable markup, so extraction works on the ordered line
// sequence produced by Normalize:
//
//	raw text → Normalize → Lines → Extractor.Extract → Found | Absent
//
// Every field that cannot be recovered degrades to models.NotAvailable or an
// empty slice. Only an explicit "not found" marker or a page without any
// semester block produces Absent.
package extractor

import (
	"regexp"
	"strings"

	"github.com/nubngpi/resultscraper/models"
)

// semesterHeader matches a line that is exactly "<n><st|nd|rd|th> Semester".
// Decorative headings such as "3rd Semester Results of ..." do not match.
var semesterHeader = regexp.MustCompile(`(?i)^\d+(?:st|nd|rd|th)[\s\x0B\p{Zs}\x{FEFF}\x{2028}\x{2029}]Semester$`)

var (
	sixDigits       = regexp.MustCompile(`^\d{6}$`)
	subjectReplacer = strings.NewReplacer("Theory", "", "Practical", "")
)

// Outcome is the result of one extraction: either Found or Absent.
type Outcome interface {
	outcome()
}

// Found carries a recovered student record.
type Found struct {
	Result models.StudentResult
}

// AbsentReason says why no record was recovered.
type AbsentReason string

const (
	ReasonMarker      AbsentReason = "marker"
	ReasonNoSemesters AbsentReason = "no_semesters"
)

// Absent means the page is well formed but holds no result.
type Absent struct {
	Reason AbsentReason

	// Marker is the absence marker that matched, when Reason is ReasonMarker.
	Marker string
}

func (Found) outcome()  {}
func (Absent) outcome() {}

// Extractor holds the layout parameters. It keeps no per-call state and is
// safe for concurrent use.
type Extractor struct {
	opts Options
}

// New returns an Extractor with the default layout parameters adjusted by opts.
func New(opts ...Option) *Extractor {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.Window < 1 {
		o.Window = DefaultWindow
	}
	junk := make([]string, len(o.JunkPhrases))
	for i, p := range o.JunkPhrases {
		junk[i] = strings.ToLower(p)
	}
	o.JunkPhrases = junk
	return &Extractor{opts: o}
}

// Window reports the semester look-ahead size in use.
func (e *Extractor) Window() int {
	return e.opts.Window
}

var defaultExtractor = New()

// Extract runs the default extractor over lines.
func Extract(lines Lines) Outcome {
	return defaultExtractor.Extract(lines)
}

// Extract scans lines once and assembles the student record.
func (e *Extractor) Extract(lines Lines) Outcome {
	if marker, ok := e.absenceMarker(lines); ok {
		return Absent{Reason: ReasonMarker, Marker: marker}
	}

	semesters := e.scanSemesters(lines)
	if len(semesters) == 0 {
		return Absent{Reason: ReasonNoSemesters}
	}

	return Found{Result: models.StudentResult{
		Roll:         roll(lines),
		Institute:    institute(lines),
		Regulation:   e.regulation(lines),
		Technology:   models.Technology,
		Semesters:    semesters,
		LatestGPA:    semesters[0].GPA,
		LatestStatus: semesters[0].Status,
	}}
}

func (e *Extractor) absenceMarker(lines Lines) (string, bool) {
	for _, line := range lines {
		for _, m := range e.opts.AbsenceMarkers {
			if strings.Contains(line, m) {
				return m, true
			}
		}
	}
	return "", false
}

func roll(lines Lines) string {
	if v, ok := lines.valueAfter("Roll Number"); ok {
		return v
	}
	for _, line := range lines {
		if sixDigits.MatchString(line) {
			return line
		}
	}
	return models.NotAvailable
}

func institute(lines Lines) string {
	if v, ok := lines.valueAfter("Institution"); ok {
		return v
	}
	if v, ok := lines.valueAfter("Institute"); ok {
		return v
	}
	return models.NotAvailable
}

func (e *Extractor) regulation(lines Lines) string {
	for _, line := range lines {
		for _, tok := range e.opts.Regulations {
			if line == tok {
				return line
			}
		}
	}
	return models.NotAvailable
}

// scanSemesters walks lines left to right. The seen set and the record list
// are local, so repeated calls over the same lines give equal results.
func (e *Extractor) scanSemesters(lines Lines) []models.SemesterRecord {
	var records []models.SemesterRecord
	seen := make(map[string]struct{})

	for i, line := range lines {
		if !semesterHeader.MatchString(line) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}

		rec, ok := e.readSegment(line, lines.window(i, e.opts.Window))
		if !ok {
			// Junk status: not a record, and the name stays available.
			continue
		}
		records = append(records, rec)
		seen[line] = struct{}{}
	}
	return records
}

// readSegment extracts one semester from its window. The first line of
// segment is the header itself. ok is false when the status line is junk.
func (e *Extractor) readSegment(name string, segment Lines) (models.SemesterRecord, bool) {
	status := models.NotAvailable
	if len(segment) > 1 {
		status = segment[1]
	}

	lowerStatus := strings.ToLower(status)
	for _, junk := range e.opts.JunkPhrases {
		if strings.Contains(lowerStatus, junk) {
			return models.SemesterRecord{}, false
		}
	}

	gpa := models.NotAvailable
	if idx := segment.index("GPA"); idx != -1 && idx+1 < len(segment) {
		gpa = segment[idx+1]
	}

	failed := []string{}
	if strings.Contains(lowerStatus, "failed") || strings.Contains(lowerStatus, "referred") {
		failed = failedSubjects(segment)
	}

	return models.SemesterRecord{
		Semester:       name,
		Status:         status,
		GPA:            gpa,
		FailedSubjects: failed,
	}, true
}

func failedSubjects(segment Lines) []string {
	subjects := []string{}
	seen := make(map[string]struct{})
	for _, line := range segment {
		if !strings.Contains(line, "Theory") && !strings.Contains(line, "Practical") {
			continue
		}
		name := strings.TrimSpace(subjectReplacer.Replace(line))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		subjects = append(subjects, name)
	}
	return subjects
}
