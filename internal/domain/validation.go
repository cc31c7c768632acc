package domain

import (
	"regexp"
	"strings"
)

var letterRe = regexp.MustCompile(`[A-Za-z]`)

// ValidFileName: есть расширение и хотя бы одна латинская буква перед ним.
// "noext", ".hidden", "123.pdf" — невалидны.
func ValidFileName(name string) bool {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return false
	}
	return letterRe.MatchString(name[:dot])
}
