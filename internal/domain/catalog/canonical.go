package catalog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonicalize normalizes an attribute or value label before it is persisted:
// trim, uppercase the first rune, lowercase the remainder.
func Canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

func sameLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateNewValues checks a batch of proposed value labels against an
// attribute's existing values. Each invalid entry is flagged under its own
// "values[i]" key so the caller can surface per-field errors; valid entries are
// returned canonicalized, in input order. The batch is rejected as a whole when
// empty.
func ValidateNewValues(existing []AttributeValue, proposed []string) ([]string, map[string]string) {
	errs := make(map[string]string)
	if len(proposed) == 0 {
		errs["values"] = "at least one value is required"
		return nil, errs
	}

	clean := make([]string, 0, len(proposed))
	for i, raw := range proposed {
		key := fmt.Sprintf("values[%d]", i)
		label := strings.TrimSpace(raw)
		if label == "" {
			errs[key] = "value must not be empty"
			continue
		}

		dup := false
		for _, v := range existing {
			if sameLabel(v.Name, label) {
				errs[key] = fmt.Sprintf("value %q already exists for this attribute", label)
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		// also reject duplicates inside the batch itself
		for j := 0; j < i; j++ {
			if sameLabel(proposed[j], label) {
				errs[key] = fmt.Sprintf("value %q is listed more than once", label)
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		clean = append(clean, Canonicalize(label))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return clean, nil
}
