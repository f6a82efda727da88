package timetable

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/nconklindev/timetable/internal/types"
)

var (
	classLabelRx = regexp.MustCompile(`(\d{1,2})\s*([^\d\s][^\d]*)`)
	barLabelRx   = regexp.MustCompile(`^\s*\d{1,2}\s*[A-Za-zА-Яа-яЁё]{1,6}\s*$`)
	leadGradeRx  = regexp.MustCompile(`^(\d{1,2})`)
)

// classWords are dropped from label suffixes ("11 В класс" is "11В").
var classWords = map[string]bool{
	"КЛАСС":  true,
	"КЛАССА": true,
	"КЛАССЫ": true,
	"КЛ":     true,
	"КЛ.":    true,
}

// ParseClassLabel recognizes a class label inside a cell: a 1-2 digit grade
// followed by a letter or word suffix.
func ParseClassLabel(cell string) (types.Label, bool) {
	s := strings.ReplaceAll(strings.ToUpper(Norm(cell)), "Ё", "Е")
	m := classLabelRx.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	var b strings.Builder
	for _, word := range strings.Fields(m[2]) {
		if classWords[word] {
			continue
		}
		for _, r := range word {
			if r == '-' || unicode.IsDigit(r) {
				continue
			}
			b.WriteRune(r)
		}
	}

	suffix := b.String()
	if !strings.ContainsFunc(suffix, unicode.IsLetter) {
		return "", false
	}
	return types.Label(m[1] + suffix), true
}

// GradeFromLabel returns the leading grade number of a label.
func GradeFromLabel(l types.Label) (int, bool) {
	return leadingGrade(string(l))
}

// GradeFromTitle extracts the grade a sheet title refers to, e.g. "7 классы".
func GradeFromTitle(title string) (int, bool) {
	if l, ok := ParseClassLabel(title); ok {
		return GradeFromLabel(l)
	}
	return leadingGrade(Norm(title))
}

// IsBareLabel reports whether the cell is nothing but a class label, which
// marks the start of the next block.
func IsBareLabel(cell string) bool {
	return barLabelRx.MatchString(cell)
}

func leadingGrade(s string) (int, bool) {
	m := leadGradeRx.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
