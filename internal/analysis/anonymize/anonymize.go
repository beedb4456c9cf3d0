// Package anonymize strips personally identifying information from messages
// before any feature is computed or stored.
package anonymize

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"
)

// Replacement tokens. The tokens contain no digits and no redacted names, so
// re-running the anonymizer over its own output is a no-op.
const (
	EmailToken = "[EMAIL]"
	PhoneToken = "[PHONE]"
	NameToken  = "[NAME]"
)

// AnonymousUser is the pseudonym for empty or whitespace-only user ids.
const AnonymousUser = "anonymous"

var (
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
)

// defaultNames are common first names redacted from message text. The list is
// intentionally small; callers with richer rosters extend it via WithNames.
var defaultNames = []string{
	"alice", "amelia", "ana", "andrew", "anna", "ben", "carlos", "carol",
	"charlie", "chris", "daniel", "david", "diana", "emily", "emma", "eve",
	"frank", "grace", "hannah", "henry", "james", "jane", "john", "kate",
	"laura", "linda", "lucas", "maria", "mark", "mary", "michael", "mike",
	"nancy", "oliver", "paul", "peter", "rachel", "robert", "sarah", "sofia",
	"steve", "susan", "tom", "victor", "wendy",
}

// Anonymizer redacts emails, phone numbers, and known first names from text
// and derives stable pseudonyms for user identifiers.
type Anonymizer struct {
	namePattern *regexp.Regexp
}

// Option adjusts anonymizer construction.
type Option func(*options)

type options struct {
	extraNames []string
}

// WithNames extends the redacted first-name list.
func WithNames(names ...string) Option {
	return func(o *options) {
		o.extraNames = append(o.extraNames, names...)
	}
}

// New builds an anonymizer with the default name list plus any options.
func New(opts ...Option) *Anonymizer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[string]struct{}, len(defaultNames)+len(o.extraNames))
	names := make([]string, 0, len(defaultNames)+len(o.extraNames))
	for _, name := range append(append([]string{}, defaultNames...), o.extraNames...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Strings(names)

	return &Anonymizer{
		namePattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(names, "|") + `)\b`),
	}
}

// Text replaces emails, phone numbers, and known first names with
// placeholder tokens, preserving all surrounding content and whitespace.
func (a *Anonymizer) Text(s string) string {
	s = emailPattern.ReplaceAllString(s, EmailToken)
	s = phonePattern.ReplaceAllString(s, PhoneToken)
	s = a.namePattern.ReplaceAllString(s, NameToken)
	return s
}

// UserID maps a raw user identifier onto a stable pseudonym of the form
// user_<n>. Identical inputs always map to the same pseudonym. Empty and
// whitespace-only inputs map to AnonymousUser.
func (a *Anonymizer) UserID(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return AnonymousUser
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(raw))
	return fmt.Sprintf("user_%d", h.Sum64())
}
