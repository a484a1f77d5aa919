package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NASentinel is the wire form of an N/A answer.
const NASentinel = "N/A"

type AnswerKind int

const (
	AnswerKindNone AnswerKind = iota
	AnswerKindNumber
	AnswerKindBool
	AnswerKindNA
)

// AnswerValue holds exactly one of a numeric scale value, a yes/no boolean or
// the N/A sentinel. On the wire it is a JSON number, a JSON boolean or the
// string "N/A".
type AnswerValue struct {
	kind AnswerKind
	num  float64
	flag bool
}

func NumberAnswer(v float64) AnswerValue { return AnswerValue{kind: AnswerKindNumber, num: v} }
func BoolAnswer(v bool) AnswerValue      { return AnswerValue{kind: AnswerKindBool, flag: v} }
func NAAnswer() AnswerValue              { return AnswerValue{kind: AnswerKindNA} }

func (v AnswerValue) Kind() AnswerKind { return v.kind }
func (v AnswerValue) IsNA() bool       { return v.kind == AnswerKindNA }

// Number returns the numeric value and whether the answer is numeric.
func (v AnswerValue) Number() (float64, bool) {
	return v.num, v.kind == AnswerKindNumber
}

// Bool returns the yes/no value and whether the answer is a boolean.
func (v AnswerValue) Bool() (bool, bool) {
	return v.flag, v.kind == AnswerKindBool
}

func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerKindNumber:
		return fmt.Sprintf("%g", v.num)
	case AnswerKindBool:
		if v.flag {
			return "yes"
		}
		return "no"
	case AnswerKindNA:
		return NASentinel
	default:
		return "<empty>"
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerKindNumber:
		return json.Marshal(v.num)
	case AnswerKindBool:
		return json.Marshal(v.flag)
	case AnswerKindNA:
		return json.Marshal(NASentinel)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = AnswerValue{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*v = BoolAnswer(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*v = BoolAnswer(false)
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if isNAString(s) {
			*v = NAAnswer()
			return nil
		}
		return fmt.Errorf("answer value %q is neither a number, a boolean nor %q", s, NASentinel)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("answer value: %w", err)
		}
		*v = NumberAnswer(n)
		return nil
	}
}

func isNAString(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N/A", "NA":
		return true
	}
	return false
}
