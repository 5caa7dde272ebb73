package pipeline

import "github.com/rotisserie/eris"

// Failure taxonomy. None of these abort a run: they are logged and surface as
// gaps on the AccountMap.
var (
	// ErrSourceUnavailable marks a search or fetch call that failed, timed out
	// or returned nothing usable.
	ErrSourceUnavailable = eris.New("source unavailable")
	// ErrUnparseableContent marks source text that yielded no candidates.
	ErrUnparseableContent = eris.New("unparseable content")
	// ErrAmbiguousMerge marks one name observed with materially different titles.
	ErrAmbiguousMerge = eris.New("ambiguous merge")
	// ErrHierarchyCycle marks a reporting edge that would have closed a loop.
	ErrHierarchyCycle = eris.New("hierarchy cycle")
)

// sourceErr classifies a failed call as ErrSourceUnavailable while keeping the
// cause in the message.
func sourceErr(op, target string, cause error) error {
	if cause == nil {
		return eris.Wrapf(ErrSourceUnavailable, "pipeline: %s %q: empty response", op, target)
	}
	return eris.Wrapf(ErrSourceUnavailable, "pipeline: %s %q: %v", op, target, cause)
}
