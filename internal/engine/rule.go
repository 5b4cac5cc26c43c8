package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RBusarow/Doks/internal/model"
)

// Rule is a named regex pattern plus a replacement template. The template may
// embed sample tokens of the form {{sample:N}}, where N is the numeric id of
// a configured sample; it may also use standard regex group references
// ($1, ${name}) against the rule's own pattern.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
}

// The {{sample:N}} delimiter was chosen because doubled braces never occur in
// the regex replacement syntax and are rare in prose; any occurrence of the
// opening delimiter that does not form a complete token is rejected outright.
const tokenPrefix = "{{sample:"

var sampleTokenRe = regexp.MustCompile(`\{\{sample:(\d+)\}\}`)

// resolveTemplate substitutes every sample token in a rule's template with
// its resolved content. Resolution happens once per rule, before any
// matching. Sample content has "$" escaped so later group expansion
// reproduces it literally.
func resolveTemplate(r Rule, samples model.SampleMap) (string, error) {
	tmpl := r.Template

	matches := sampleTokenRe.FindAllStringSubmatchIndex(tmpl, -1)
	starts := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		starts[m[0]] = struct{}{}
	}

	// Fail fast on any opening delimiter that is not a complete token.
	for from := 0; ; {
		i := strings.Index(tmpl[from:], tokenPrefix)
		if i < 0 {
			break
		}
		at := from + i
		if _, ok := starts[at]; !ok {
			end := at + len(tokenPrefix) + 8
			if end > len(tmpl) {
				end = len(tmpl)
			}
			return "", &MalformedSampleTokenError{Rule: r.Name, Token: tmpl[at:end]}
		}
		from = at + len(tokenPrefix)
	}

	if len(matches) == 0 {
		return tmpl, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		id, err := strconv.Atoi(tmpl[m[2]:m[3]])
		if err != nil {
			return "", &MalformedSampleTokenError{Rule: r.Name, Token: tmpl[m[0]:m[1]]}
		}
		res, ok := samples[id]
		if !ok {
			return "", &UnresolvedSampleTokenError{Rule: r.Name, ID: id}
		}
		b.WriteString(tmpl[last:m[0]])
		b.WriteString(strings.ReplaceAll(res.Content, "$", "$$"))
		last = m[1]
	}
	b.WriteString(tmpl[last:])
	return b.String(), nil
}
