package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Counter names for sequential identifiers.
const (
	SequenceLoan      = "loan"
	SequenceGuarantor = "guarantor"
)

// IDFormat renders a numeral as a business-facing identifier. Width is a
// minimum; numerals beyond it are rendered in full.
type IDFormat struct {
	Prefix string
	Width  int
}

var (
	LoanIDFormat      = IDFormat{Prefix: "LN", Width: 5}
	GuarantorIDFormat = IDFormat{Prefix: "GU", Width: 3}
	PaymentIDFormat   = IDFormat{Prefix: "PY-", Width: 4}
)

func (f IDFormat) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", f.Prefix, f.Width, n)
}

// Parse extracts the numeral from id, reporting false if id does not match.
func (f IDFormat) Parse(id string) (int64, bool) {
	if !strings.HasPrefix(id, f.Prefix) {
		return 0, false
	}
	digits := id[len(f.Prefix):]
	if len(digits) < f.Width {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MaxSuffix returns the largest numeral among ids matching the format, or 0.
func (f IDFormat) MaxSuffix(ids []string) int64 {
	var max int64
	for _, id := range ids {
		if n, ok := f.Parse(id); ok && n > max {
			max = n
		}
	}
	return max
}
