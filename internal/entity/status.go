package entity

type VideoStatus string

const (
	StatusPending    VideoStatus = "PENDING"
	StatusUploaded   VideoStatus = "UPLOADED"
	StatusProcessing VideoStatus = "PROCESSING"
	StatusDone       VideoStatus = "DONE"
	StatusError      VideoStatus = "ERROR"
)

func (s VideoStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUploaded, StatusProcessing, StatusDone, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s VideoStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

func (s VideoStatus) String() string {
	return string(s)
}

// DefaultProcessingError is used when the worker reports a failure without a reason.
const DefaultProcessingError = "Erro desconhecido no processamento (Worker não enviou motivo)."
