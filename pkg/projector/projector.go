// Package projector derives the display status of a mobile from its lease and the current time.
package projector

import (
	"time"

	"github.com/pixperk/handset/pkg/types"
)

// View is the listing row for one mobile.
// Requester, Made and Due are only set when the mobile is leased.
type View struct {
	Mobile    string
	Status    types.Status
	Requester string
	Made      time.Time
	Due       time.Time
}

// Leased reports whether the view carries lease details.
func (v View) Leased() bool {
	return v.Status != types.StatusAvailable
}

// Project classifies lease at now. A nil lease is AVAILABLE; a lease is IN_USE
// up to and including its due instant and overdue strictly after it.
func Project(mobile string, lease *types.Lease, now time.Time) View {
	if lease == nil {
		return View{Mobile: mobile, Status: types.StatusAvailable}
	}

	status := types.StatusInUse
	if now.After(lease.Due) {
		status = types.StatusOverdue
	}

	return View{
		Mobile:    mobile,
		Status:    status,
		Requester: lease.Requester,
		Made:      lease.Made,
		Due:       lease.Due,
	}
}
