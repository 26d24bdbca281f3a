package extractor

// DefaultWindow is the number of lines, header included, scanned for one
// semester's fields. It is tied to the current layout of the results site.
const DefaultWindow = 15

// Defaults for the text markers the extractor recognises.
var (
	// DefaultAbsenceMarkers mark a page that reports an unknown roll.
	// Matched as case-sensitive substrings.
	DefaultAbsenceMarkers = []string{"Sorry", "not found"}

	// DefaultJunkPhrases mark a "status" line that is really navigation or
	// advertisement text. Matched case-insensitively.
	DefaultJunkPhrases = []string{"all institutes", "sponsored by", "hosted on", "results of"}

	// DefaultRegulations are the regulation years the site publishes.
	DefaultRegulations = []string{"2022", "2016", "2010"}
)

// Options tunes the extractor to the source layout.
type Options struct {
	// Window is the semester look-ahead size. Values below 1 use DefaultWindow.
	Window int

	AbsenceMarkers []string
	JunkPhrases    []string
	Regulations    []string
}

// Option mutates Options.
type Option func(*Options)

// WithWindow overrides the semester look-ahead size.
func WithWindow(n int) Option {
	return func(o *Options) { o.Window = n }
}

// WithJunkPhrases replaces the junk phrase set.
func WithJunkPhrases(phrases ...string) Option {
	return func(o *Options) { o.JunkPhrases = phrases }
}

// WithAbsenceMarkers replaces the absence marker set.
func WithAbsenceMarkers(markers ...string) Option {
	return func(o *Options) { o.AbsenceMarkers = markers }
}

// WithRegulations replaces the known regulation tokens.
func WithRegulations(tokens ...string) Option {
	return func(o *Options) { o.Regulations = tokens }
}

func defaultOptions() Options {
	return Options{
		Window:         DefaultWindow,
		AbsenceMarkers: DefaultAbsenceMarkers,
		JunkPhrases:    DefaultJunkPhrases,
		Regulations:    DefaultRegulations,
	}
}
