package relay

// I/O operations that can fail during a run.
const (
	OpRead       = "read"
	OpWrite      = "write"
	OpFlush      = "flush"
	OpDiagnostic = "diagnostic"
)

// IOError is the only failure a run can produce. Every IOError is fatal to
// the run that returned it.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return "relay " + e.Op + " failed"
	}
	return "relay " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}
