// Package slug нормализует категории курсов к единому виду.
package slug

import (
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s+`)

// Make приводит категорию к слагу: обрезает пробелы по краям,
// заменяет последовательности пробелов на дефис и переводит
// в нижний регистр.
func Make(category string) string {
	s := strings.TrimSpace(category)
	s = spaces.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}
