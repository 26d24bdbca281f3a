package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nubngpi/resultscraper/models"
)

func mustFind(t *testing.T, out Outcome) models.StudentResult {
	t.Helper()
	found, ok := out.(Found)
	require.Truef(t, ok, "expected Found, got %#v", out)
	return found.Result
}

func TestExtract_PassedSemester(t *testing.T) {
	res := mustFind(t, Extract(Lines{"3rd Semester", "Passed", "GPA", "3.45"}))

	require.Len(t, res.Semesters, 1)
	assert.Equal(t, models.SemesterRecord{
		Semester:       "3rd Semester",
		Status:         "Passed",
		GPA:            "3.45",
		FailedSubjects: []string{},
	}, res.Semesters[0])
	assert.Equal(t, "3.45", res.LatestGPA)
	assert.Equal(t, "Passed", res.LatestStatus)
	assert.Equal(t, models.Technology, res.Technology)
}

func TestExtract_ReferredSemester(t *testing.T) {
	res := mustFind(t, Extract(Lines{
		"2nd Semester", "Referred", "Physics Theory", "Physics Practical", "GPA", "N/A",
	}))

	require.Len(t, res.Semesters, 1)
	assert.Equal(t, []string{"Physics"}, res.Semesters[0].FailedSubjects)
	assert.Equal(t, "N/A", res.Semesters[0].GPA)
}

func TestExtract_AbsenceMarkers(t *testing.T) {
	tests := []struct {
		name   string
		lines  Lines
		marker string
	}{
		{
			name:   "sorry line with semesters",
			lines:  Lines{"3rd Semester", "Passed", "GPA", "3.45", "Sorry, result not found"},
			marker: "Sorry",
		},
		{
			name:   "not found first",
			lines:  Lines{"Result not found", "1st Semester", "Passed"},
			marker: "not found",
		},
		{
			name:   "substring inside a longer line",
			lines:  Lines{"1st Semester", "Passed", "We are Sorry for the delay"},
			marker: "Sorry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(tt.lines)
			absent, ok := out.(Absent)
			require.True(t, ok)
			assert.Equal(t, ReasonMarker, absent.Reason)
			assert.Equal(t, tt.marker, absent.Marker)
		})
	}
}

func TestExtract_MarkersAreCaseSensitive(t *testing.T) {
	res := mustFind(t, Extract(Lines{"1st Semester", "Passed", "NOT FOUND in archive", "sorry"}))
	assert.Len(t, res.Semesters, 1)
}

func TestExtract_NoSemesters(t *testing.T) {
	tests := []struct {
		name  string
		lines Lines
	}{
		{"empty", Lines{}},
		{"nil", nil},
		{"decorative heading only", Lines{"3rd Semester Results of Diploma", "Passed", "GPA", "3.00"}},
		{"scalar fields only", Lines{"Roll Number", "123456", "Institution", "Dhaka Polytechnic"}},
		{"header without ordinal suffix", Lines{"3 Semester", "Passed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(tt.lines)
			absent, ok := out.(Absent)
			require.True(t, ok)
			assert.Equal(t, ReasonNoSemesters, absent.Reason)
		})
	}
}

func TestExtract_HeaderPattern(t *testing.T) {
	tests := []struct {
		line  string
		match bool
	}{
		{"3rd Semester", true},
		{"1st semester", true},
		{"12TH SEMESTER", true},
		{"2nd Semester", true},
		{"3rd Semester Results of Diploma", false},
		{"Semester 3", false},
		{"3rd  Semester", false},
		{"third Semester", false},
		{"4th\vSemester", true},
		{"5th\u2028Semester", true},
		{"6th\u2029Semester", true},
		{"7th\u00a0Semester", true},
		{"8th\u200bSemester", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.match, semesterHeader.MatchString(tt.line))
		})
	}
}

func TestExtract_DuplicateHeaderFirstWins(t *testing.T) {
	res := mustFind(t, Extract(Lines{
		"3rd Semester", "Passed", "GPA", "3.45",
		"Footer", "3rd Semester", "Referred", "GPA", "2.10",
	}))

	require.Len(t, res.Semesters, 1)
	assert.Equal(t, "3rd Semester", res.Semesters[0].Semester)
	assert.Equal(t, "Passed", res.Semesters[0].Status)
	assert.Equal(t, "3.45", res.Semesters[0].GPA)
}

func TestExtract_JunkStatusDoesNotMarkSeen(t *testing.T) {
	res := mustFind(t, Extract(Lines{
		"3rd Semester", "Sponsored by XYZ",
		"Menu", "Home",
		"3rd Semester", "Passed", "GPA", "3.80",
	}))

	require.Len(t, res.Semesters, 1)
	assert.Equal(t, "Passed", res.Semesters[0].Status)
	assert.Equal(t, "3.80", res.Semesters[0].GPA)
}

func TestExtract_JunkPhrases(t *testing.T) {
	for _, status := range []string{
		"View All Institutes",
		"SPONSORED BY acme",
		"Hosted on Cloud",
		"3rd Semester Results of Diploma",
	} {
		t.Run(status, func(t *testing.T) {
			out := Extract(Lines{"4th Semester", status, "GPA", "3.00"})
			_, absent := out.(Absent)
			assert.True(t, absent)
		})
	}
}

func TestExtract_FailedSubjectDedup(t *testing.T) {
	res := mustFind(t, Extract(Lines{
		"5th Semester", "Failed", "Math Theory", "Math Theory", "  Chemistry Practical ", "Theory", "GPA", "0.00",
	}))

	assert.Equal(t, []string{"Math", "Chemistry"}, res.Semesters[0].FailedSubjects)
}

func TestExtract_FailedSubjectsOnlyForFailedOrReferred(t *testing.T) {
	res := mustFind(t, Extract(Lines{"1st Semester", "Passed", "Math Theory", "GPA", "3.10"}))
	assert.Empty(t, res.Semesters[0].FailedSubjects)
	assert.NotNil(t, res.Semesters[0].FailedSubjects)

	res = mustFind(t, Extract(Lines{"1st Semester", "Result: FAILED", "Math Theory"}))
	assert.Equal(t, []string{"Math"}, res.Semesters[0].FailedSubjects)
}

func TestExtract_SegmentEdges(t *testing.T) {
	t.Run("header is last line", func(t *testing.T) {
		res := mustFind(t, Extract(Lines{"Roll Number", "654321", "6th Semester"}))
		require.Len(t, res.Semesters, 1)
		assert.Equal(t, models.NotAvailable, res.Semesters[0].Status)
		assert.Equal(t, models.NotAvailable, res.Semesters[0].GPA)
	})

	t.Run("GPA label last in segment", func(t *testing.T) {
		res := mustFind(t, Extract(Lines{"6th Semester", "Passed", "GPA"}))
		assert.Equal(t, models.NotAvailable, res.Semesters[0].GPA)
	})

	t.Run("GPA beyond window", func(t *testing.T) {
		lines := Lines{"7th Semester", "Passed"}
		for i := 0; i < 13; i++ {
			lines = append(lines, "filler")
		}
		lines = append(lines, "GPA", "3.90")
		res := mustFind(t, Extract(lines))
		assert.Equal(t, models.NotAvailable, res.Semesters[0].GPA)
	})

	t.Run("window spans next semester", func(t *testing.T) {
		res := mustFind(t, Extract(Lines{
			"2nd Semester", "Referred", "English Theory",
			"1st Semester", "Passed", "GPA", "3.20",
		}))
		require.Len(t, res.Semesters, 2)
		assert.Equal(t, "3.20", res.Semesters[0].GPA)
		assert.Equal(t, "3.20", res.Semesters[1].GPA)
		assert.Equal(t, "2nd Semester", res.Semesters[0].Semester)
	})
}

func TestExtract_WindowOption(t *testing.T) {
	lines := Lines{"7th Semester", "Passed", "a", "b", "GPA", "3.90"}

	res := mustFind(t, New(WithWindow(4)).Extract(lines))
	assert.Equal(t, models.NotAvailable, res.Semesters[0].GPA)

	res = mustFind(t, New(WithWindow(6)).Extract(lines))
	assert.Equal(t, "3.90", res.Semesters[0].GPA)

	assert.Equal(t, DefaultWindow, New(WithWindow(0)).Window())
}

func TestExtract_CustomMarkersAndJunk(t *testing.T) {
	e := New(WithAbsenceMarkers("No record"), WithJunkPhrases("ADVERT"))

	_, absent := e.Extract(Lines{"1st Semester", "Passed", "Sorry"}).(Absent)
	assert.False(t, absent)

	_, absent = e.Extract(Lines{"No record for roll"}).(Absent)
	assert.True(t, absent)

	_, absent = e.Extract(Lines{"1st Semester", "advert here"}).(Absent)
	assert.True(t, absent)
}

func TestExtract_ScalarFields(t *testing.T) {
	tests := []struct {
		name       string
		lines      Lines
		roll       string
		institute  string
		regulation string
	}{
		{
			name:       "labelled",
			lines:      Lines{"Roll Number", "123456", "Institution", "Dhaka Polytechnic Institute", "Regulation", "2016", "1st Semester", "Passed"},
			roll:       "123456",
			institute:  "Dhaka Polytechnic Institute",
			regulation: "2016",
		},
		{
			name:       "label case insensitive, institute fallback",
			lines:      Lines{"ROLL NUMBER", "R-77", "institute", "Feni Polytechnic", "1st Semester", "Passed"},
			roll:       "R-77",
			institute:  "Feni Polytechnic",
			regulation: models.NotAvailable,
		},
		{
			name:       "six digit fallback",
			lines:      Lines{"Student", "12345", "654321", "2022", "1st Semester", "Passed"},
			roll:       "654321",
			institute:  models.NotAvailable,
			regulation: "2022",
		},
		{
			name:       "label as last line",
			lines:      Lines{"1st Semester", "Passed", "Institution"},
			roll:       models.NotAvailable,
			institute:  models.NotAvailable,
			regulation: models.NotAvailable,
		},
		{
			name:       "regulation must be exact",
			lines:      Lines{"Regulation 2022", "2019", "1st Semester", "Passed"},
			roll:       models.NotAvailable,
			institute:  models.NotAvailable,
			regulation: models.NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustFind(t, Extract(tt.lines))
			assert.Equal(t, tt.roll, res.Roll)
			assert.Equal(t, tt.institute, res.Institute)
			assert.Equal(t, tt.regulation, res.Regulation)
		})
	}
}

func TestExtract_EncounterOrder(t *testing.T) {
	res := mustFind(t, Extract(Lines{
		"4th Semester", "Passed", "GPA", "3.60",
		"3rd Semester", "Referred", "Math Theory", "GPA", "2.50",
		"2nd Semester", "Passed", "GPA", "3.10",
	}))

	var names []string
	for _, s := range res.Semesters {
		names = append(names, s.Semester)
	}
	assert.Equal(t, []string{"4th Semester", "3rd Semester", "2nd Semester"}, names)
	assert.Equal(t, "3.60", res.LatestGPA)
	assert.Equal(t, "Passed", res.LatestStatus)
}

func TestExtract_Idempotent(t *testing.T) {
	lines := Normalize(samplePage)
	first := Extract(lines)
	second := Extract(lines)
	assert.Equal(t, first, second)
}

const samplePage = `
  Home
  All Results
  Roll Number
  123456
  Institution
  Dhaka Polytechnic Institute
  2022
  3rd Semester Results of Diploma
  3rd Semester
  Sponsored by XYZ
  3rd Semester
  Referred
  Mathematics-II Theory
  Physics Practical
  GPA
  N/A
  2nd Semester
  Passed
  GPA
  3.45
  1st Semester
  Passed
  GPA
  3.80
`

func TestExtract_SamplePage(t *testing.T) {
	res := mustFind(t, Extract(Normalize(samplePage)))

	assert.Equal(t, "123456", res.Roll)
	assert.Equal(t, "Dhaka Polytechnic Institute", res.Institute)
	assert.Equal(t, "2022", res.Regulation)
	require.Len(t, res.Semesters, 3)
	assert.Equal(t, "3rd Semester", res.Semesters[0].Semester)
	assert.Equal(t, "Referred", res.Semesters[0].Status)
	assert.Equal(t, []string{"Mathematics-II", "Physics"}, res.Semesters[0].FailedSubjects)
	assert.Equal(t, "N/A", res.LatestGPA)
	assert.Equal(t, "Referred", res.LatestStatus)
}
