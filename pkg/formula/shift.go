package formula

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Shift units. The month unit is reachable only through natural-language
// signs; it has no dedicated operator symbol.
const (
	UnitYear    = "Y"
	UnitQuarter = "Q"
	UnitMonth   = "M"
	UnitYearEnd = "YEND"
)

// Shift directions. Backward takes a historical period (positive offset),
// forward a future period (offset stored negative), current the present
// period (offset zero).
const (
	DirCurrent  = "current"
	DirForward  = "forward"
	DirBackward = "backward"
)

// Policy selects how the decoder treats a field with no recognizable shift
// marker. Unrecognized markers on non-time fields are expected during bulk
// field extraction, so the default callers use is PolicyWarn.
type Policy int

const (
	// PolicyIgnore returns an unsuccessful token silently.
	PolicyIgnore Policy = iota
	// PolicyWarn logs a warning and returns an unsuccessful token.
	PolicyWarn
	// PolicyRaise fails with ErrUnknownShiftMarker.
	PolicyRaise
)

// SpecialField is the decoded form of a specially marked field. Exactly one
// of two shapes applies: an executable-suffix field carries Executable and
// nothing else, a time-shifted field carries Unit, Direction and Offset.
// OK is false when no marker was recognized or the sign was a current-period
// no-op; Origin then equals the input unchanged.
type SpecialField struct {
	Origin     string
	Unit       string
	Direction  string
	Offset     int
	Executable string
	OK         bool
}

// Translation pairs a marked field with its canonical rendering. Slices of
// Translation are kept ordered by descending field length so callers can
// substitute longest-first without a shorter code corrupting a longer one.
type Translation struct {
	Field     string
	Canonical string
}

var (
	// Executable-suffix fields (identifier followed by a dotted lowercase
	// method tail) short-circuit shift decoding.
	executablePattern = regexp.MustCompile(`^([a-zA-Z0-9_]+)\.[a-z]+`)

	// The three shift operators; greedy prefix so the last operator in the
	// field wins, matching how marked fields are written.
	shiftPattern = regexp.MustCompile(`^(.*)([\^~°])(.*)$`)

	offsetPattern = regexp.MustCompile(`-?\d+`)
)

// Decoder decodes time-shift markers on field names. The zero value is
// usable; the logger only receives PolicyWarn diagnostics.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder returns a Decoder logging PolicyWarn hits to logger. A nil
// logger discards them.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Decoder{logger: logger}
}

// Parse decodes the shift marker on field. When sign is empty the marker is
// split out of the field itself using the operator symbols; otherwise sign
// is taken as the marker and field as the bare origin. Because the empty
// string is reserved for that fallback, an explicit current-period request
// must be spelled with one of the synonym strings ("本期", "当期") — those
// return a no-op token with OK=false. Executable-suffix detection runs
// first and wins. Policy only governs the no-marker case; a recognized
// marker that fails to decode always errors.
func (d *Decoder) Parse(field, sign string, policy Policy) (SpecialField, error) {
	if m := executablePattern.FindStringSubmatch(field); m != nil {
		origin := m[1]
		return SpecialField{
			Origin:     origin,
			Executable: strings.Replace(field, origin, "", 1),
			OK:         true,
		}, nil
	}

	if sign == "" {
		m := shiftPattern.FindStringSubmatch(field)
		if m == nil {
			switch policy {
			case PolicyRaise:
				return SpecialField{}, fmt.Errorf("%w: %q", ErrUnknownShiftMarker, field)
			case PolicyWarn:
				d.logger.Warn("field has no recognizable shift marker", slog.String("field", field))
			}
			return SpecialField{Origin: field}, nil
		}
		field, sign = m[1], m[2]+m[3]
	}

	sign = strings.ToLower(sign)
	if sign == "本期" || sign == "当期" || sign == "" {
		// Current-period synonym: a no-op shift, not an error.
		return SpecialField{Origin: field}, nil
	}

	tok := SpecialField{Origin: field, OK: true}

	// Year-end markers take priority over the plain year family.
	switch {
	case strings.Contains(sign, "end") || strings.Contains(sign, "末") || strings.Contains(sign, "°"):
		tok.Unit = UnitYearEnd
	case strings.Contains(sign, "year") || strings.Contains(sign, "年") || strings.Contains(sign, "^") || strings.Contains(sign, "期"):
		tok.Unit = UnitYear
	case strings.Contains(sign, "quarter") || strings.Contains(sign, "季") || strings.Contains(sign, "~"):
		tok.Unit = UnitQuarter
	case strings.Contains(sign, "month") || strings.Contains(sign, "月"):
		tok.Unit = UnitMonth
	default:
		return SpecialField{}, fmt.Errorf("%w: %q", ErrUnknownShiftUnit, sign)
	}

	switch {
	case strings.Contains(sign, "本") || strings.Contains(sign, "当") || strings.Contains(sign, "°0"):
		tok.Direction = DirCurrent
	case strings.Contains(sign, "下") || strings.Contains(sign, "^-") || strings.Contains(sign, "~-") || strings.Contains(sign, "°-"):
		tok.Direction = DirForward
	case strings.Contains(sign, "上") || strings.Contains(sign, "^") || strings.Contains(sign, "~") || strings.Contains(sign, "°"):
		tok.Direction = DirBackward
	default:
		return SpecialField{}, fmt.Errorf("%w: %q", ErrUnknownShiftDirection, sign)
	}

	offset, err := shiftOffset(sign, tok.Direction)
	if err != nil {
		return SpecialField{}, err
	}
	tok.Offset = offset

	return tok, nil
}

// shiftOffset extracts the offset magnitude from a sign: a literal signed
// integer if present (forward direction forces it negative), otherwise
// repetitions of 上/下, otherwise zero for current-period markers.
func shiftOffset(sign, direction string) (int, error) {
	if lit := offsetPattern.FindString(sign); lit != "" {
		n, err := strconv.Atoi(lit)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMissingShiftOffset, sign)
		}
		if direction == DirForward {
			if n < 0 {
				return n, nil
			}
			return -n, nil
		}
		return n, nil
	}

	switch {
	case strings.Contains(sign, "上"):
		return strings.Count(sign, "上"), nil
	case strings.Contains(sign, "下"):
		return -strings.Count(sign, "下"), nil
	case strings.Contains(sign, "本") || strings.Contains(sign, "当") || strings.Contains(sign, "°0"):
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingShiftOffset, sign)
}

// Translate renders the canonical column name for a marked field:
// origin_{unit}{direction}{abs(offset)}. Fields that fail to decode, decode
// as the current-period no-op, or carry an executable suffix render as their
// original text. The canonical format is a stable contract used for column
// naming by the DDL and view generators.
func (d *Decoder) Translate(field, sign string, policy Policy) (string, error) {
	tok, err := d.Parse(field, sign, policy)
	if err != nil {
		return "", err
	}
	if !tok.OK || tok.Unit == "" {
		return field, nil
	}
	offset := tok.Offset
	if offset < 0 {
		offset = -offset
	}
	return fmt.Sprintf("%s_%s%s%d", tok.Origin, tok.Unit, tok.Direction, offset), nil
}

// TranslateAll translates a batch of fields and returns the pairs ordered by
// descending field length, supporting longest-match-first substitution.
func (d *Decoder) TranslateAll(fields []string, sign string, policy Policy) ([]Translation, error) {
	out := make([]Translation, 0, len(fields))
	for _, f := range fields {
		canonical, err := d.Translate(f, sign, policy)
		if err != nil {
			return nil, err
		}
		out = append(out, Translation{Field: f, Canonical: canonical})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Field) > len(out[j].Field)
	})
	return out, nil
}
