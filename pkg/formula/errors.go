package formula

import "errors"

// Sentinel errors for the formula compiler. Callers match with errors.Is;
// every wrapped message carries the offending formula or marker text so the
// configuration-table editor can find the bad row.
var (
	// ErrMalformedFormula reports a structural violation, such as an
	// inner-argument comma inside a single-clause formula.
	ErrMalformedFormula = errors.New("malformed formula")

	// ErrComparisonForm reports a single "=" or SQL-style "<>" where only
	// the two-character comparison forms are permitted.
	ErrComparisonForm = errors.New("disallowed comparison form")

	// ErrUnknownShiftMarker reports a field with no recognizable time-shift
	// operator, surfaced only under PolicyRaise.
	ErrUnknownShiftMarker = errors.New("unrecognized shift marker")

	// ErrUnknownShiftUnit reports a shift sign whose time unit cannot be
	// determined.
	ErrUnknownShiftUnit = errors.New("unrecognized shift unit")

	// ErrUnknownShiftDirection reports a shift sign whose direction cannot
	// be determined.
	ErrUnknownShiftDirection = errors.New("unrecognized shift direction")

	// ErrMissingShiftOffset reports a shift sign with no extractable offset.
	ErrMissingShiftOffset = errors.New("missing shift offset")

	// ErrMalformedRange reports interval text that does not split into
	// exactly two bracketed bounds.
	ErrMalformedRange = errors.New("malformed range")

	// ErrInvalidNumber reports a range bound that cannot be coerced to a
	// number.
	ErrInvalidNumber = errors.New("invalid numeric literal")

	// ErrUnknownMethod reports a comparison-method label the range codec
	// does not understand, or a threshold count it cannot render.
	ErrUnknownMethod = errors.New("unknown comparison method")
)
