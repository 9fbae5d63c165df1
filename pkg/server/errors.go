package server

import (
	"errors"

	pb "github.com/pixperk/handset/api/v1"
	"github.com/pixperk/handset/pkg/types"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// converts domain errors to gRPC status errors
// holder-carrying failures attach an ErrorInfo so clients can read the holder without parsing messages
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}

	var (
		code   codes.Code
		reason string
	)
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		code, reason = codes.InvalidArgument, pb.ReasonInvalid

	case errors.Is(err, types.ErrInvalidDue):
		code, reason = codes.InvalidArgument, pb.ReasonInvalidDue

	case errors.Is(err, types.ErrAlreadyLeased):
		code, reason = codes.FailedPrecondition, pb.ReasonInUse

	case errors.Is(err, types.ErrUnknownMobile):
		code, reason = codes.NotFound, pb.ReasonUnknownMobile

	case errors.Is(err, types.ErrNotFound):
		code, reason = codes.NotFound, pb.ReasonNotFound

	case errors.Is(err, types.ErrForbiddenHolder):
		code, reason = codes.PermissionDenied, pb.ReasonForbidden

	default:
		return status.Error(codes.Internal, err.Error())
	}

	info := &errdetails.ErrorInfo{
		Reason: reason,
		Domain: pb.ErrorDomain,
	}
	if holder, ok := types.HolderOf(err); ok {
		info.Metadata = map[string]string{pb.MetadataHolder: holder}
	}

	st, detailErr := status.New(code, err.Error()).WithDetails(info)
	if detailErr != nil {
		return status.Error(code, err.Error())
	}
	return st.Err()
}

// returned when the rate limiter rejects a call
func rateLimitedError() error {
	return status.Error(codes.ResourceExhausted, "too many requests")
}
