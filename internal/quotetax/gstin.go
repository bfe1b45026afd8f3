package quotetax

import (
	"regexp"
	"strconv"
	"strings"
)

// 2-digit state code, 10-char PAN, entity number, 'Z', checksum.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// NormalizeGSTIN upper-cases and trims a GSTIN.
func NormalizeGSTIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidGSTIN reports whether raw is a well-formed GSTIN with a known state
// code. The checksum character is not verified.
func ValidGSTIN(raw string) bool {
	gstin := NormalizeGSTIN(raw)
	if !gstinPattern.MatchString(gstin) {
		return false
	}
	_, ok := StateCodeFromGSTIN(gstin)
	return ok
}

// StateCodeFromGSTIN returns the numeric state code prefix of a GSTIN.
func StateCodeFromGSTIN(raw string) (int, bool) {
	gstin := NormalizeGSTIN(raw)
	if len(gstin) < 2 {
		return 0, false
	}
	code, err := strconv.Atoi(gstin[:2])
	if err != nil {
		return 0, false
	}
	// 97 is "other territory", 99 the centre jurisdiction.
	if (code >= 1 && code <= 38) || code == 97 || code == 99 {
		return code, true
	}
	return 0, false
}
