package types

import "time"

// a lease is an exclusive, time-bounded booking of one mobile
// it is never mutated: the registry replaces or removes it as a whole
// Due > Made is enforced by the registry at acquisition time, not here
type Lease struct {
	Mobile    string
	Requester string    // who collected the mobile
	Made      time.Time // when the mobile was collected
	Due       time.Time // when the mobile must be returned
}
