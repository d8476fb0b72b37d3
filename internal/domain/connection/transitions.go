package connection

type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionWithdraw Action = "withdraw"
)

// Side names the party allowed to perform an action.
type Side string

const (
	SideRequester Side = "requester"
	SideRecipient Side = "recipient"
)

type Transition struct {
	To   Status
	Side Side
}

var transitions = map[Status]map[Action]Transition{
	StatusPending: {
		ActionAccept:   {To: StatusAccepted, Side: SideRecipient},
		ActionReject:   {To: StatusRejected, Side: SideRecipient},
		ActionWithdraw: {To: StatusWithdrawn, Side: SideRequester},
	},
}

// Next looks up the transition for action from the given status.
func Next(from Status, action Action) (Transition, bool) {
	t, ok := transitions[from][action]
	return t, ok
}

// ActorSide is the party an action belongs to, independent of current state.
func ActorSide(action Action) Side {
	if action == ActionWithdraw {
		return SideRequester
	}
	return SideRecipient
}

// DecisionAction maps a recipient decision onto its action.
func DecisionAction(decision Status) (Action, bool) {
	switch decision {
	case StatusAccepted:
		return ActionAccept, true
	case StatusRejected:
		return ActionReject, true
	default:
		return "", false
	}
}
