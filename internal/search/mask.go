package search

import "strings"

// piiAttributes are the profile attributes whose echoed search values are
// masked: login-like, name-like, contact-like and manager-reference fields.
var piiAttributes = map[string]bool{
	"login":        true,
	"email":        true,
	"secondEmail":  true,
	"firstName":    true,
	"lastName":     true,
	"middleName":   true,
	"displayName":  true,
	"mobilePhone":  true,
	"primaryPhone": true,
	"manager":      true,
	"managerId":    true,
}

// IsPII reports whether the attribute is personally identifying.
func IsPII(attribute string) bool {
	return piiAttributes[attribute]
}

// MaskValue masks a personally identifying value for echoing: values of
// length <= 3 become "***"; longer values keep the first and last character
// with the interior replaced by '*'.
func MaskValue(value string) string {
	runes := []rune(value)
	if len(runes) <= 3 {
		return "***"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
