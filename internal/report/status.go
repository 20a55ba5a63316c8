package report

import "fmt"

// StatusLog is the ordered, human-readable record of one generation run.
// It is returned to the caller for display and is never persisted by this package.
type StatusLog []string

// Addf appends one formatted line.
func (l *StatusLog) Addf(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the log.
func (l StatusLog) Lines() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

// shortError trims error text to fit on a status line.
func shortError(err error) string {
	s := err.Error()
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
