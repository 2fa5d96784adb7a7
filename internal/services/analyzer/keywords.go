package analyzer

// Keyword sets backing the lexical scoring. Kept as package data so tuning is
// a data change, not a logic change.

var positiveWords = map[string]bool{
	"thanks":     true,
	"thank":      true,
	"great":      true,
	"awesome":    true,
	"perfect":    true,
	"excellent":  true,
	"good":       true,
	"love":       true,
	"helpful":    true,
	"amazing":    true,
	"wonderful":  true,
	"appreciate": true,
	"solved":     true,
	"resolved":   true,
	"works":      true,
	"fixed":      true,
	"happy":      true,
}

var negativeWords = map[string]bool{
	"bad":          true,
	"terrible":     true,
	"awful":        true,
	"horrible":     true,
	"useless":      true,
	"broken":       true,
	"angry":        true,
	"frustrated":   true,
	"disappointed": true,
	"unacceptable": true,
	"worst":        true,
	"hate":         true,
	"failed":       true,
	"failure":      true,
	"wrong":        true,
	"slow":         true,
	"scam":         true,
	"ridiculous":   true,
	"waste":        true,
}

var urgentPhrases = []string{
	"urgent",
	"asap",
	"immediately",
	"right now",
	"emergency",
	"critical",
	"as soon as possible",
}

var complaintPhrases = []string{
	"not working",
	"doesn't work",
	"does not work",
	"complaint",
	"complain",
	"refund",
	"broken",
	"failed",
	"charged twice",
	"overcharged",
	"cancel my",
	"disappointed",
	"unacceptable",
	"still waiting",
}

var complimentPhrases = []string{
	"thank you",
	"thanks",
	"great job",
	"well done",
	"very helpful",
	"appreciate",
	"perfect",
	"excellent",
	"that solved",
	"that fixed",
}

var humanRequestPhrases = []string{
	"speak to a human",
	"talk to a human",
	"speak to a person",
	"talk to a person",
	"real person",
	"human agent",
	"speak to someone",
	"talk to someone",
	"speak with an agent",
	"talk to an agent",
	"customer service rep",
	"speak to a manager",
	"talk to a manager",
}

var questionLeads = []string{
	"how ",
	"what ",
	"when ",
	"where ",
	"why ",
	"who ",
	"can ",
	"could ",
	"would ",
	"is ",
	"are ",
	"do ",
	"does ",
}
