package security

import "strings"

// AllowList is the set of email addresses permitted to use the app.
// An empty list permits every authenticated account.
type AllowList struct {
	emails map[string]struct{}
}

// ParseAllowList splits a comma separated list, trimming each entry and
// dropping empty ones
func ParseAllowList(raw string) AllowList {
	list := AllowList{emails: make(map[string]struct{})}
	for _, part := range strings.Split(raw, ",") {
		if email := strings.TrimSpace(part); email != "" {
			list.emails[email] = struct{}{}
		}
	}
	return list
}

// Empty reports whether no addresses are configured
func (l AllowList) Empty() bool {
	return len(l.emails) == 0
}

// Len returns the number of configured addresses
func (l AllowList) Len() int {
	return len(l.emails)
}

// Permits reports whether email may access the app. Matching is exact
// after trimming surrounding whitespace.
func (l AllowList) Permits(email string) bool {
	if l.Empty() {
		return true
	}
	_, ok := l.emails[strings.TrimSpace(email)]
	return ok
}
