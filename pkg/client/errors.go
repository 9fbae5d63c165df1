package client

import (
	"fmt"

	pb "github.com/pixperk/handset/api/v1"
	"github.com/pixperk/handset/pkg/types"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

var reasons = map[string]error{
	pb.ReasonInvalid:       types.ErrInvalidRequest,
	pb.ReasonInvalidDue:    types.ErrInvalidDue,
	pb.ReasonInUse:         types.ErrAlreadyLeased,
	pb.ReasonUnknownMobile: types.ErrUnknownMobile,
	pb.ReasonNotFound:      types.ErrNotFound,
	pb.ReasonForbidden:     types.ErrForbiddenHolder,
}

// turns a gRPC status carrying ErrorInfo back into the matching domain error
// anything else is returned unchanged
func fromStatus(err error, mobile string) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != pb.ErrorDomain {
			continue
		}
		sentinel, known := reasons[info.GetReason()]
		if !known {
			break
		}
		if holder := info.GetMetadata()[pb.MetadataHolder]; holder != "" {
			return &types.HolderError{Err: sentinel, Mobile: mobile, Holder: holder}
		}
		return fmt.Errorf("%w: %s", sentinel, st.Message())
	}

	return err
}
