package feature

// Lexicons are fixed package data. Extending the feature set means adding a
// named feature function and a vector field, not loading word lists at
// runtime.

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// metaphorCues marks figurative framing common in organizational speech.
var metaphorCues = wordSet(
	"anchor", "battle", "bridge", "climb", "compass", "current", "fire",
	"flame", "fog", "garden", "harvest", "horizon", "journey", "lighthouse",
	"mountain", "ocean", "path", "river", "road", "root", "roots", "sail",
	"seed", "seeds", "ship", "shadow", "spark", "storm", "tide", "torch",
	"voyage", "wave", "waves", "wildfire",
)

// modalCues marks obligation and necessity language.
var modalCues = wordSet(
	"must", "should", "shall", "ought", "need", "needs", "needed",
	"required", "require", "mandatory", "obligated", "imperative",
)

// individualPronouns and collectivePronouns drive the pronoun ratio features.
var individualPronouns = wordSet("i", "me", "my", "mine", "myself")

var collectivePronouns = wordSet("we", "us", "our", "ours", "ourselves")

// negationCues marks negation and difficulty language feeding the emotional
// stability estimate.
var negationCues = wordSet(
	"not", "no", "never", "none", "nothing", "nobody", "nowhere",
	"cannot", "can't", "won't", "don't", "doesn't", "didn't", "isn't",
	"aren't", "wasn't", "weren't", "couldn't", "shouldn't", "wouldn't",
	"without", "fail", "failed", "failing", "fails", "broken", "stuck",
	"impossible", "blocked", "lost",
)

// anchorSymbols marks the shared mission vocabulary a unit aligns around.
var anchorSymbols = wordSet(
	"mission", "vision", "purpose", "value", "values", "principle",
	"principles", "goal", "goals", "charter", "cause", "impact", "core",
	"north", "star", "why",
)
