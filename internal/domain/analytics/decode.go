package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// zonedLayouts carry their own offset. The trailing Z of the
// millisecond layout is a literal, so such values are UTC.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

// localLayouts carry no offset and are read as wall-clock time in the
// caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type rawAttempt struct {
	Date     json.RawMessage `json:"date"`
	Accuracy json.RawMessage `json:"accuracy"`
}

// NormalizeQuizScores returns stored quiz history as a JSON array, unwrapping
// the legacy form in which the array was saved as a JSON string. Entries are
// returned verbatim. An empty or null payload yields an empty array. An error
// wrapping domain.ErrDecode is returned when the payload is not a sequence.
func NormalizeQuizScores(raw json.RawMessage) (json.RawMessage, error) {
	entries, err := quizEntries(raw)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return data, nil
}

// DecodeQuizAttempts decodes stored quiz history.
//
// The payload may be a JSON array of attempts or a JSON string holding such
// an array. Entries are decoded one by one: an unreadable accuracy becomes 0
// and an unreadable date becomes the zero time, so a single bad entry never
// discards the rest. Dates without an offset are read in loc (UTC when nil).
// An error wrapping domain.ErrDecode is returned only when the payload as a
// whole is not a sequence.
func DecodeQuizAttempts(raw json.RawMessage, loc *time.Location) ([]domain.QuizAttempt, error) {
	if loc == nil {
		loc = time.UTC
	}

	entries, err := quizEntries(raw)
	if err != nil || entries == nil {
		return nil, err
	}

	attempts := make([]domain.QuizAttempt, 0, len(entries))
	for _, entry := range entries {
		var ra rawAttempt
		if err := json.Unmarshal(entry, &ra); err != nil {
			attempts = append(attempts, domain.QuizAttempt{})
			continue
		}
		attempts = append(attempts, domain.QuizAttempt{
			Date:     parseDate(ra.Date, loc),
			Accuracy: parseAccuracy(ra.Accuracy),
		})
	}
	return attempts, nil
}

// quizEntries splits a payload into its raw entries. A nil slice with a nil
// error means the payload was empty.
func quizEntries(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return nil, nil
		}
	}

	entries := []json.RawMessage{}
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: quiz scores are not a sequence: %w", domain.ErrDecode, err)
	}
	if entries == nil {
		// a JSON string holding null
		return nil, nil
	}
	return entries, nil
}

func parseAccuracy(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		v = f
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseDate(raw json.RawMessage, loc *time.Location) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	if raw[0] != '"' {
		// epoch milliseconds
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil || ms <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(ms)).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
