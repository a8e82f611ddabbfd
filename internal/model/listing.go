package model

// CompanyEntry maps a listed company's display name to its exchange code.
type CompanyEntry struct {
	Name string `json:"name"`
	Code string `json:"code"` // exactly 6 digits, zero-padded
}

// IsExchangeCode reports whether s is exactly six ASCII digits.
func IsExchangeCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
