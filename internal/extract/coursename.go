package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// renamedCourses replace whole course names before anything else runs.
var renamedCourses = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`civ/literature`), "civ. lit."},
	{regexp.MustCompile(`civ/the arts`), "civ. arts"},
	{regexp.MustCompile(`civ/biblical revelation`), "bib. rev."},
	{regexp.MustCompile(`foundations of academic discourse`), "writing"},
	{regexp.MustCompile(`fitness (&|and) wellness.*`), "fitwell"},
}

// descriptiveTerms are dropped from course names, longest first so that
// "introduction to the" wins over "introduction to".
var descriptiveTerms = func() [][]string {
	terms := []string{
		"accompanying",
		"administration in",
		"advanced",
		"adv",
		"analytical",
		"applications",
		"applied",
		"basic",
		"beginner",
		"beginning",
		"college",
		"culturally relevant",
		"early childhood",
		"elementary",
		"for engineers",
		"for mus ed majors",
		"foundations of",
		"foundations",
		"general",
		"intermediate",
		"intro to",
		"intro to the",
		"introduction to",
		"introduction to the",
		"math",
		"mthds of",
		"observational",
		"principles of",
		"prin of",
		"prin",
		"professional",
		"teaching",
		"tech in",
		"topics in",
		"topics",
		"& apprec",
		"comp",
	}
	split := make([][]string, len(terms))
	for i, t := range terms {
		split[i] = strings.Fields(t)
	}
	slices.SortStableFunc(split, func(a, b []string) int {
		return len(b) - len(a)
	})
	return split
}()

var abbreviations = map[string]string{
	"laboratory": "lab",
	"literature": "lit.",
	"psychology": "psych.",
}

func isRomanNumeral(word string) bool {
	switch word {
	case "i", "ii", "iii", "iv":
		return true
	}
	return false
}

func removeTerms(words []string) []string {
	for _, term := range descriptiveTerms {
		out := make([]string, 0, len(words))
		for i := 0; i < len(words); i++ {
			if i+len(term) <= len(words) && slices.Equal(words[i:i+len(term)], term) {
				i += len(term) - 1
				continue
			}
			out = append(out, words[i])
		}
		words = out
	}
	return words
}

func titleCase(word string) string {
	if isRomanNumeral(word) {
		return strings.ToUpper(word)
	}
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + word[size:]
}

// ReadableCourseName shortens a registrar course title into the name a
// student would use, ex. "PRINCIPLES OF ACCOUNTING I" -> "Accounting I".
func ReadableCourseName(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	if name == "" {
		return ""
	}
	for _, r := range renamedCourses {
		name = r.pattern.ReplaceAllString(name, r.replacement)
	}

	// cross-listed names keep their first half and any trailing numeral
	if before, _, found := strings.Cut(name, "/"); found {
		words := strings.Fields(name)
		last := words[len(words)-1]
		name = before
		if isRomanNumeral(last) {
			name += " " + last
		}
	}

	name = strings.TrimPrefix(strings.TrimSpace(name), "study:")
	name = strings.NewReplacer(":", " ", "-", " ").Replace(name)

	words := removeTerms(strings.Fields(name))
	for i, w := range words {
		if abbreviated, ok := abbreviations[w]; ok {
			words[i] = abbreviated
		}
	}

	// drop anything after the numeral, ex. "physics ii engineering"
	for i, w := range words {
		if i > 0 && isRomanNumeral(w) {
			words = words[:i+1]
			break
		}
	}

	if len(words) == 0 {
		words = strings.Fields(strings.ToLower(title))
	}
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}
