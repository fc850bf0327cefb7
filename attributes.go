package taskcore

import (
	"regexp"
	"sort"
	"strings"
)

var customAttributePattern = regexp.MustCompile(`^\[(\w+):(.+)\]`)

// CustomAttributes scans the description line by line for tokens of the form
// [namespace:key=value] and returns the sorted, distinct key=value strings
// whose namespace matches.
func (o *Object) CustomAttributes(namespace string) []string {
	seen := map[string]struct{}{}
	for _, line := range strings.Split(o.description, "\n") {
		match := customAttributePattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil || match[1] != namespace {
			continue
		}
		seen[match[2]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for attribute := range seen {
		out = append(out, attribute)
	}
	sort.Strings(out)
	return out
}
