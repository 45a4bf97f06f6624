// Package protocol implements the comma-separated text wire format spoken
// between the bridge and its peer.
package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ghalamif/FlightBridge/internal/domain"
)

// ErrTooFewFields is returned for control messages with fewer than the six
// required channels.
var ErrTooFewFields = errors.New("protocol: too few control fields")

// DecodeControls parses a control message. Each token decodes as its
// leading number, or zero when it has none; tokens past the tenth are ignored. Optional channels that
// are absent decode as zero.
func DecodeControls(payload []byte) (domain.ControlInputs, error) {
	var (
		vals [domain.ControlChannelCount]float64
		n    int
	)
	for tok := range strings.SplitSeq(string(payload), ",") {
		if n == domain.ControlChannelCount {
			break
		}
		vals[n] = lenientFloat(tok)
		n++
	}
	if n < domain.RequiredControlChannels {
		return domain.ControlInputs{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, n, domain.RequiredControlChannels)
	}
	return domain.ControlsFromChannels(vals), nil
}

// EncodeControls formats c as a full ten-channel control message.
func EncodeControls(c domain.ControlInputs) []byte {
	ch := c.Channels()
	return appendFields(make([]byte, 0, 16*len(ch)), ch[:])
}

// lenientFloat reads the longest leading number of tok after whitespace, as
// C's atof does: "0.5abc" is 0.5, "1e400" is +Inf, and a token without a
// leading number is 0.
func lenientFloat(tok string) float64 {
	s := strings.TrimLeft(tok, " \t\n\v\f\r")
	neg := false
	body := s
	if body != "" && (body[0] == '+' || body[0] == '-') {
		neg = body[0] == '-'
		body = body[1:]
	}
	switch {
	case hasPrefixFold(body, "inf"):
		return math.Inf(sign(neg))
	case hasPrefixFold(body, "nan"):
		return math.NaN()
	}

	n := numericPrefix(body)
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(body[:n], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if neg {
		v = -v
	}
	return v
}

// numericPrefix returns the length of the unsigned decimal number at the
// start of s: digits, an optional fraction and an optional exponent.
func numericPrefix(s string) int {
	i, digits := 0, 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func sign(neg bool) int {
	if neg {
		return -1
	}
	return 1
}

func appendFields(dst []byte, vals []float64) []byte {
	for i, v := range vals {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendFloat(dst, v, 'f', 6, 64)
	}
	return dst
}
