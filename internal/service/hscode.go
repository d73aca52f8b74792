package service

import "regexp"

// HS codes appear in user messages as 4.2 dotted (8471.30), 6-digit, or
// 10-digit forms.
var hscodePattern = regexp.MustCompile(`\b(\d{4}\.\d{2}|\d{6}|\d{10})\b`)

// extractHSCode returns the first HS code found in the message, or
// "N/A" when there is none.
func extractHSCode(message string) string {
	if match := hscodePattern.FindString(message); match != "" {
		return match
	}
	return "N/A"
}
