package types

import "errors"

// AllTasks acknowledges the whole execution tracking matrix at once.
const AllTasks = "all"

// Notice outcomes, also used as metric labels.
const (
	NoticeAccepted  = "accepted"
	NoticeDuplicate = "duplicate"
)

// Notice validation errors.
var (
	ErrInvalidSession = errors.New("invalid session id")
	ErrUnknownTask    = errors.New("unknown task")
)

// NoticeAck is the acknowledgement of a completion notice. It is the only
// effect of the notice; nothing is sent anywhere.
type NoticeAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Task      string `json:"task"`
	Message   string `json:"message"`
}
