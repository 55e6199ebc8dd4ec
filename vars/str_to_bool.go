package vars

import "strings"

// StrToBool reports whether str spells true. Unknown spellings are false.
func StrToBool(str string) bool {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true", "t", "yes", "y", "1", "on":
		return true
	}
	return false
}
