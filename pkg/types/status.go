package types

// derived display status of a mobile, never stored
type Status int

const (
	StatusAvailable Status = iota // no lease
	StatusInUse                   // leased and now <= due
	StatusOverdue                 // leased and now > due
)

// external representation, shared by every transport
// overdue keeps the "DUE" wire name existing clients already parse
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusInUse:
		return "IN_USE"
	case StatusOverdue:
		return "DUE"
	default:
		return "UNKNOWN"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
