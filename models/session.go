package models

// Step is the conversation position persisted for a chat user. It replaces
// the transport's callback-token encoding with an explicit value.
type Step string

const (
	StepAwaitingLogin    Step = "awaiting_login"
	StepAwaitingPassword Step = "awaiting_password"
	StepActive           Step = "active"
	StepVisitChosen      Step = "visit_chosen"
	StepDayChosen        Step = "day_chosen"
	StepTimeChosen       Step = "time_chosen"
	StepAwaitingChildren Step = "awaiting_children"
)

// Session field keys. Fields are set and cleared individually; a session is
// routinely observed partially populated mid-conversation.
const (
	SessionKeyStep        = "step"
	SessionKeyLoginID     = "login_id"
	SessionKeyValidated   = "validated"
	SessionKeyVisitNumber = "visit_number"
	SessionKeySelectedDay = "selected_day"
	SessionKeyVisitTime   = "visit_time"
	SessionKeyChildren    = "children"
)

// SessionBookingKeys are the transient keys cleared after a successful
// commit or when the user backs out to the menu. Login identity survives.
var SessionBookingKeys = []string{
	SessionKeyVisitNumber,
	SessionKeySelectedDay,
	SessionKeyVisitTime,
	SessionKeyChildren,
}
