package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Report is the canonical structured error type for Ahorn. All error
// builders return *Report, which can be wrapped as a ReportError so it
// survives errors.As() unwrapping — adapted from the teacher's
// internal/errors/report.go, with the ast.Span source-location field
// dropped (this engine has no front-end of its own to attach spans to;
// Data carries whatever structured context a builder wants instead).
type Report struct {
	Schema  string         `json:"schema"` // always "ahorn.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON converts a Report to JSON (deterministic, sorted keys are
// guaranteed for map[string]any by encoding/json).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newReport(code, phase, format string, args ...any) error {
	return WrapReport(&Report{
		Schema:  "ahorn.error/v1",
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
	})
}

// InvalidIR builds the EXE004/structural InvalidIR report: a broken CFG,
// SSA, or execution invariant.
func InvalidIR(phase, format string, args ...any) error {
	code := CFG001
	switch phase {
	case "executor", "concolic":
		code = EXE004
	case "cfg":
		code = CFG001
	case "ssa":
		code = SSA001
	}
	return newReport(code, phase, format, args...)
}

// UndefinedValue builds the EXE002 report: the evaluator found an unbound
// or undefined name where a ground value was required.
func UndefinedValue(phase, format string, args ...any) error {
	return newReport(EXE002, phase, format, args...)
}

// SolverUnknown builds the EXE003/SMT001 report: the solver answered
// Unknown, which spec.md §4.3 treats as fatal to the current step.
func SolverUnknown(phase, format string, args ...any) error {
	code := SMT001
	if phase == "executor" || phase == "concolic" {
		code = EXE003
	}
	return newReport(code, phase, format, args...)
}

// NotImplemented builds the EXE001 report: an unsupported source-language
// feature was encountered.
func NotImplemented(phase, format string, args ...any) error {
	return newReport(EXE001, phase, format, args...)
}

// NotSupported builds the EXE005 report: a feature this port deliberately
// refuses, such as first-class function values or nested while inside the
// shadow pipeline.
func NotSupported(phase, format string, args ...any) error {
	return newReport(EXE005, phase, format, args...)
}
