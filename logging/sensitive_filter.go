package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces redacted values.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns find secrets embedded in free text. Each pattern
// captures the text around the secret so only the secret is replaced.
var sensitivePatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)(pass(?:word|wd)?\s*[:=]\s*)("[^"]*"|[^\s,;]+)`), "${1}" + RedactedPlaceholder},
	{regexp.MustCompile(`(?i)(secret\s*[:=]\s*)("[^"]*"|[^\s,;]+)`), "${1}" + RedactedPlaceholder},
	{regexp.MustCompile(`(?i)(token\s*[:=]\s*)("[^"]*"|[^\s,;]+)`), "${1}" + RedactedPlaceholder},
	// -password value on a logged command line.
	{regexp.MustCompile(`(?i)(--?password )(\S+)`), "${1}" + RedactedPlaceholder},
	// Userinfo in URLs.
	{regexp.MustCompile(`(://[^:/@\s]+:)([^@\s]+)(@)`), "${1}" + RedactedPlaceholder + "${3}"},
}

// sensitiveKeys mark field names whose values are never logged.
var sensitiveKeys = []string{
	"PASSWORD",
	"PASSWD",
	"PWD",
	"SECRET",
	"TOKEN",
}

// RedactSensitiveData replaces secrets found in value with
// RedactedPlaceholder, keeping the key or prefix that revealed them.
//
//	RedactSensitiveData("open report.pdf password=hunter2")
//	// "open report.pdf password=[REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	for _, p := range sensitivePatterns {
		value = p.re.ReplaceAllString(value, p.repl)
	}
	return value
}

// IsSensitiveField reports whether a field named fieldName holds a secret.
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, key := range sensitiveKeys {
		if strings.Contains(upper, key) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData reports whether RedactSensitiveData would change value.
func ContainsSensitiveData(value string) bool {
	for _, p := range sensitivePatterns {
		if p.re.MatchString(value) {
			return true
		}
	}
	return false
}
