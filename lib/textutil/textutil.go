package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// MostSimilar returns the index of the candidate closest to target by
// Jaro-Winkler similarity, or -1 when none reaches threshold.
func MostSimilar(target string, candidates []string, threshold float64) int {
	target = NormalizeName(target)

	best := -1
	var similarity float64
	for i, c := range candidates {
		sim := matchr.JaroWinkler(target, NormalizeName(c), false)
		if sim > similarity {
			similarity = sim
			best = i
		}
	}
	if similarity < threshold {
		return -1
	}
	return best
}
