package gpusource

import "fmt"

// FormatBreakingChangeError signals that an upstream data source changed its
// format. Breaking changes skip retries and alert immediately: they won't
// fix themselves.
type FormatBreakingChangeError struct {
	Source  string
	Details string
}

func (e *FormatBreakingChangeError) Error() string {
	return fmt.Sprintf("breaking format change in %s: %s", e.Source, e.Details)
}
