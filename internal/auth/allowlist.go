package auth

import "strings"

// AllowList is the set of emails granted admin privilege, parsed from the
// comma-separated ADMIN_EMAILS value. Entries are trimmed and lower-cased;
// membership checks normalize the candidate the same way, so matching is
// exact after trimming and case-insensitive. Empty config means no admins.
type AllowList map[string]struct{}

// ParseAllowList parses a raw comma-separated email list
func ParseAllowList(raw string) AllowList {
	list := AllowList{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		list[entry] = struct{}{}
	}
	return list
}

// Contains reports whether the normalized email is on the allow-list
func (l AllowList) Contains(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	_, ok := l[email]
	return ok
}
