package schema

import (
	"strings"
	"unicode"
)

// organizationMarkers mark a display name as an institution rather than a person.
var organizationMarkers = map[string]struct{}{
	"foundation": {}, "fund": {}, "trust": {}, "inc": {}, "llc": {}, "ltd": {},
	"corp": {}, "corporation": {}, "company": {}, "co": {}, "church": {},
	"association": {}, "society": {}, "club": {}, "family": {},
}

// cleanParts trims non-alphanumeric punctuation from both ends of each name part,
// and additionally trims trailing periods.
func cleanParts(parts []string) []string {
	var cleaned []string
	for _, p := range parts {
		cp := strings.TrimFunc(p, func(r rune) bool {
			if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' || r == '.' || r == '&' {
				return false
			}
			return true
		})
		cp = strings.TrimSuffix(cp, ".")
		if cp != "" {
			cleaned = append(cleaned, cp)
		}
	}
	return cleaned
}

// getInitial extracts the initial from the last name part, using the first rune for Unicode safety.
func getInitial(last string) string {
	rr := []rune(last)
	if len(rr) > 0 {
		return string(rr[0])
	}
	return ""
}

func isOrganization(parts []string) bool {
	for _, p := range parts {
		if _, ok := organizationMarkers[strings.ToLower(p)]; ok {
			return true
		}
	}
	return false
}

// AbbreviateName formats "Jane Doe" to "Jane D" for reports shared outside the
// development office. Organization names such as "Acme Foundation" are kept whole,
// as are single-word names and e-mail addresses.
func AbbreviateName(name string) string {
	trimmedName := strings.TrimSpace(name)
	trimmedName = strings.Trim(trimmedName, "()\"'`")

	parts := strings.Fields(trimmedName)
	cleaned := cleanParts(parts)

	if isOrganization(cleaned) {
		return strings.Join(cleaned, " ")
	}

	if len(cleaned) >= 2 {
		first := cleaned[0]
		last := cleaned[len(cleaned)-1]
		initial := getInitial(last)
		if initial != "" {
			return first + " " + initial
		}
		return first
	}

	if len(cleaned) == 1 {
		return cleaned[0]
	}

	return trimmedName
}

// MaskEmail hides the local part of an address: "jane@example.org" becomes "j***@example.org".
// Strings without an @ are returned unchanged.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local := []rune(email[:at])
	return string(local[0]) + "***" + email[at:]
}

// MaskDonorLabel applies AbbreviateName or MaskEmail depending on what the label looks like.
func MaskDonorLabel(label string) string {
	if strings.Contains(label, "@") {
		return MaskEmail(label)
	}
	return AbbreviateName(label)
}
