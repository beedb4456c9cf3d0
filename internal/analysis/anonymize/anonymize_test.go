package anonymize

import (
	"strings"
	"testing"
)

func TestTextRedactsEmails(t *testing.T) {
	a := New()

	got := a.Text("reach me at morale.lead@example.org or ops@acme.io today")
	want := "reach me at [EMAIL] or [EMAIL] today"
	if got != want {
		t.Errorf("redacted = %q, want %q", got, want)
	}
}

func TestTextRedactsPhoneNumbers(t *testing.T) {
	a := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "dashed",
			in:   "call 555-123-4567 after standup",
			want: "call [PHONE] after standup",
		},
		{
			name: "international",
			in:   "emergency line +1 (415) 555-0199 stays open",
			want: "emergency line [PHONE] stays open",
		},
		{
			name: "plain digits",
			in:   "fax 5551234567",
			want: "fax [PHONE]",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Text(tc.in); got != tc.want {
				t.Errorf("redacted = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTextRedactsNamesCaseInsensitive(t *testing.T) {
	a := New()

	got := a.Text("Sarah asked MIKE to sync with carlos")
	want := "[NAME] asked [NAME] to sync with [NAME]"
	if got != want {
		t.Errorf("redacted = %q, want %q", got, want)
	}
}

func TestTextLeavesNameSubstringsAlone(t *testing.T) {
	a := New()

	got := a.Text("the benchmark remarks stay")
	if got != "the benchmark remarks stay" {
		t.Errorf("redacted = %q, want input unchanged", got)
	}
}

func TestTextWithExtraNames(t *testing.T) {
	a := New(WithNames("Zofia"))

	got := a.Text("zofia owns the rollout")
	if got != "[NAME] owns the rollout" {
		t.Errorf("redacted = %q, want extra name redacted", got)
	}
}

func TestTextIsIdempotent(t *testing.T) {
	a := New()

	in := "Sarah (sarah@corp.example) left 555-123-4567 for Mike"
	once := a.Text(in)
	twice := a.Text(once)
	if once != twice {
		t.Errorf("second pass changed output:\n once = %q\ntwice = %q", once, twice)
	}
	if strings.Contains(once, "@") || strings.Contains(once, "555") {
		t.Errorf("first pass left identifying content: %q", once)
	}
}

func TestTextPreservesWhitespaceAndPunctuation(t *testing.T) {
	a := New()

	got := a.Text("ping  sarah@corp.example ,\tthen regroup.")
	want := "ping  [EMAIL] ,\tthen regroup."
	if got != want {
		t.Errorf("redacted = %q, want %q", got, want)
	}
}

func TestUserIDDeterministic(t *testing.T) {
	a := New()

	first := a.UserID("U123-slack")
	second := a.UserID("U123-slack")
	if first != second {
		t.Errorf("pseudonyms differ for identical input: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "user_") {
		t.Errorf("pseudonym = %q, want user_ prefix", first)
	}
}

func TestUserIDDistinctAcrossUsers(t *testing.T) {
	a := New()

	ids := []string{"U123", "U124", "alice@corp.example", "bob@corp.example", "discord:991"}
	seen := make(map[string]string, len(ids))
	for _, raw := range ids {
		pseudonym := a.UserID(raw)
		if prior, dup := seen[pseudonym]; dup {
			t.Fatalf("pseudonym collision: %q and %q both map to %q", prior, raw, pseudonym)
		}
		seen[pseudonym] = raw
	}
}

func TestUserIDEmptyFallsBackToAnonymous(t *testing.T) {
	a := New()

	for _, raw := range []string{"", "   ", "\t\n"} {
		if got := a.UserID(raw); got != AnonymousUser {
			t.Errorf("pseudonym for %q = %q, want %q", raw, got, AnonymousUser)
		}
	}
}
