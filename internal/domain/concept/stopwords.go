package concept

// defaultStopWords is the fixed English stop-word list used for concept and
// keyword filtering. Replaceable via WithStopWords.
var defaultStopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "also": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {},
	"as": {}, "at": {}, "be": {}, "because": {}, "been": {}, "before": {},
	"being": {}, "below": {}, "between": {}, "both": {}, "but": {}, "by": {},
	"can": {}, "cannot": {}, "could": {}, "did": {}, "do": {}, "does": {},
	"doing": {}, "down": {}, "during": {}, "each": {}, "few": {}, "for": {},
	"from": {}, "further": {}, "had": {}, "has": {}, "have": {}, "having": {},
	"he": {}, "her": {}, "here": {}, "hers": {}, "herself": {}, "him": {},
	"himself": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "itself": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "myself": {}, "no": {}, "nor": {}, "not": {}, "now": {},
	"of": {}, "off": {}, "on": {}, "once": {}, "only": {}, "or": {}, "other": {},
	"our": {}, "ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {},
	"same": {}, "she": {}, "should": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "theirs": {}, "them": {},
	"themselves": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"those": {}, "through": {}, "to": {}, "too": {}, "under": {}, "until": {},
	"up": {}, "very": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "whom": {}, "why": {},
	"will": {}, "with": {}, "would": {}, "you": {}, "your": {}, "yours": {},
	"yourself": {}, "yourselves": {},
}

// commonVerbs are frequent verbs excluded from plain-token extraction.
var commonVerbs = map[string]struct{}{
	"come": {}, "find": {}, "gave": {}, "give": {}, "goes": {}, "gone": {},
	"keep": {}, "know": {}, "like": {}, "look": {}, "made": {}, "make": {},
	"need": {}, "said": {}, "take": {}, "tell": {}, "than": {}, "think": {},
	"took": {}, "used": {}, "uses": {}, "using": {}, "want": {}, "went": {},
	"work": {},
}
