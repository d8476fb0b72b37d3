package application

// Side names the party that may initiate a transition.
type Side string

const (
	SidePoster    Side = "poster"
	SideApplicant Side = "applicant"
)

var transitions = map[Status]map[Status]Side{
	StatusApplied: {
		StatusShortlisted: SidePoster,
		StatusHired:       SidePoster,
		StatusRejected:    SidePoster,
		StatusWithdrawn:   SideApplicant,
	},
	StatusShortlisted: {
		StatusHired:    SidePoster,
		StatusRejected: SidePoster,
	},
	StatusHired: {
		StatusCompleted: SidePoster,
	},
}

// Allowed reports whether from -> to is in the transition table.
func Allowed(from, to Status) bool {
	_, ok := transitions[from][to]
	return ok
}

// InitiatorFor returns the only side that may move an application into to.
// Withdrawal belongs to the applicant; everything else to the poster.
func InitiatorFor(to Status) Side {
	if to == StatusWithdrawn {
		return SideApplicant
	}
	return SidePoster
}

func AllStatuses() []Status {
	return []Status{StatusApplied, StatusShortlisted, StatusHired, StatusRejected, StatusWithdrawn, StatusCompleted}
}
