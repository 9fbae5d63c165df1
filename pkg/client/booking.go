package client

import (
	"context"
	"time"

	"github.com/pixperk/handset/pkg/types"
)

// Booking is a lease the client holds.
type Booking struct {
	client *Client
	lease  types.Lease
}

func (b *Booking) Mobile() string {
	return b.lease.Mobile
}

func (b *Booking) Due() time.Time {
	return b.lease.Due
}

func (b *Booking) Lease() types.Lease {
	return b.lease
}

func (b *Booking) Return(ctx context.Context) error {
	return b.client.Return(ctx, b.lease.Mobile)
}
