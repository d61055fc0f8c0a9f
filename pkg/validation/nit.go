package validation

import (
	"errors"
	"strings"
)

// DIAN prime weights, applied from the rightmost digit
var nitWeights = []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

var ErrInvalidNIT = errors.New("nit must contain between 6 and 15 digits")

// NormalizeNIT strips separators commonly typed in NITs ("900.373.115-3" -> "9003731153").
func NormalizeNIT(nit string) string {
	r := strings.NewReplacer(".", "", " ", "", ",", "")
	return r.Replace(strings.TrimSpace(nit))
}

// NITCheckDigit computes the DIAN modulus 11 verification digit.
func NITCheckDigit(nit string) (int, error) {
	if len(nit) < 6 || len(nit) > len(nitWeights) {
		return 0, ErrInvalidNIT
	}
	sum := 0
	for i := 0; i < len(nit); i++ {
		c := nit[len(nit)-1-i]
		if c < '0' || c > '9' {
			return 0, ErrInvalidNIT
		}
		sum += int(c-'0') * nitWeights[i]
	}
	r := sum % 11
	if r > 1 {
		return 11 - r, nil
	}
	return r, nil
}

// SplitNIT separates "900373115-3" into its number and verification digit.
// hasDigit is false when no "-d" suffix was given.
func SplitNIT(raw string) (number string, digit int, hasDigit bool, err error) {
	raw = NormalizeNIT(raw)
	number = raw
	if idx := strings.LastIndex(raw, "-"); idx >= 0 {
		number = raw[:idx]
		dv := raw[idx+1:]
		if len(dv) != 1 || dv[0] < '0' || dv[0] > '9' {
			return "", 0, false, errors.New("verification digit must be a single digit")
		}
		digit = int(dv[0] - '0')
		hasDigit = true
	}
	if _, err := NITCheckDigit(number); err != nil {
		return "", 0, false, err
	}
	return number, digit, hasDigit, nil
}
