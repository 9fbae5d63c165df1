package client

import (
	"context"
	"fmt"
	"time"

	pb "github.com/pixperk/handset/api/v1"
	hstime "github.com/pixperk/handset/pkg/time"
	"github.com/pixperk/handset/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client talks to a handset server on behalf of a single requester.
type Client struct {
	addr      string
	requester string
	conn      *grpc.ClientConn
	client    pb.MobileServiceClient
}

// Entry is one row of the catalog listing as seen by the client.
type Entry struct {
	Mobile    string
	Status    string
	Requester string
	Made      time.Time
	Due       time.Time
}

// NewClient dials addr without transport security unless opts say otherwise.
func NewClient(addr, requester string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return &Client{
		addr:      addr,
		requester: requester,
		conn:      conn,
		client:    pb.NewMobileServiceClient(conn),
	}, nil
}

func (c *Client) Requester() string {
	return c.requester
}

// Book leases mobile until due. Server rejections come back as domain errors,
// so errors.Is(err, types.ErrAlreadyLeased) and types.HolderOf work.
func (c *Client) Book(ctx context.Context, mobile string, due time.Time) (*Booking, error) {
	resp, err := c.client.Book(ctx, pb.Strings(map[string]string{
		pb.FieldMobile:    mobile,
		pb.FieldRequester: c.requester,
		pb.FieldDue:       hstime.FormatLocal(due),
	}))
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", mobile, fromStatus(err, mobile))
	}

	lease, err := leaseFrom(resp)
	if err != nil {
		return nil, err
	}

	return &Booking{client: c, lease: lease}, nil
}

func (c *Client) Return(ctx context.Context, mobile string) error {
	_, err := c.client.Return(ctx, pb.Strings(map[string]string{
		pb.FieldMobile:    mobile,
		pb.FieldRequester: c.requester,
	}))
	if err != nil {
		return fmt.Errorf("return %s: %w", mobile, fromStatus(err, mobile))
	}

	return nil
}

func (c *Client) List(ctx context.Context) ([]Entry, error) {
	resp, err := c.client.List(ctx, &structpb.Struct{})
	if err != nil {
		return nil, fmt.Errorf("list: %w", fromStatus(err, ""))
	}

	values := resp.GetFields()[pb.FieldMobiles].GetListValue().GetValues()
	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		item := v.GetStructValue()
		entry := Entry{
			Mobile:    pb.GetString(item, pb.FieldMobile),
			Status:    pb.GetString(item, pb.FieldStatus),
			Requester: pb.GetString(item, pb.FieldRequester),
		}
		if made := pb.GetString(item, pb.FieldMade); made != "" {
			if entry.Made, err = hstime.ParseLocal(made); err != nil {
				return nil, fmt.Errorf("list: bad made for %s: %w", entry.Mobile, err)
			}
		}
		if due := pb.GetString(item, pb.FieldDue); due != "" {
			if entry.Due, err = hstime.ParseLocal(due); err != nil {
				return nil, fmt.Errorf("list: bad due for %s: %w", entry.Mobile, err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Ping returns the server's clock reading.
func (c *Client) Ping(ctx context.Context) (time.Time, error) {
	resp, err := c.client.Ping(ctx, &structpb.Struct{})
	if err != nil {
		return time.Time{}, fmt.Errorf("ping: %w", fromStatus(err, ""))
	}

	return hstime.ParseLocal(pb.GetString(resp, pb.FieldNow))
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

func leaseFrom(s *structpb.Struct) (types.Lease, error) {
	made, err := hstime.ParseLocal(pb.GetString(s, pb.FieldMade))
	if err != nil {
		return types.Lease{}, fmt.Errorf("bad made in response: %w", err)
	}
	due, err := hstime.ParseLocal(pb.GetString(s, pb.FieldDue))
	if err != nil {
		return types.Lease{}, fmt.Errorf("bad due in response: %w", err)
	}

	return types.Lease{
		Mobile:    pb.GetString(s, pb.FieldMobile),
		Requester: pb.GetString(s, pb.FieldRequester),
		Made:      made,
		Due:       due,
	}, nil
}
