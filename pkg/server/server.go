package server

import (
	"context"
	"strings"

	pb "github.com/pixperk/handset/api/v1"
	"github.com/pixperk/handset/pkg/booking"
	"github.com/pixperk/handset/pkg/limiter"
	"github.com/pixperk/handset/pkg/metrics"
	hstime "github.com/pixperk/handset/pkg/time"
	"github.com/pixperk/handset/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	svc *booking.Service
}

// wraps the booking service into a gRPC server
func NewServer(svc *booking.Service) *Server {
	return &Server{
		svc: svc,
	}
}

func (s *Server) Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	//validate request
	mobile := pb.GetString(req, pb.FieldMobile)
	requester := pb.GetString(req, pb.FieldRequester)
	if strings.TrimSpace(mobile) == "" || strings.TrimSpace(requester) == "" {
		return nil, status.Error(codes.InvalidArgument, "mobile and requester required")
	}

	due, err := hstime.ParseLocal(pb.GetString(req, pb.FieldDue))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	lease, err := s.svc.Book(ctx, booking.BookRequest{
		Mobile:    mobile,
		Requester: requester,
		Due:       due,
	})
	if err != nil {
		return nil, toGRPCError(err)
	}

	return leaseMessage(lease), nil
}

func (s *Server) Return(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lease, err := s.svc.Return(ctx, booking.ReturnRequest{
		Mobile:    pb.GetString(req, pb.FieldMobile),
		Requester: pb.GetString(req, pb.FieldRequester),
	})
	if err != nil {
		return nil, toGRPCError(err)
	}

	return pb.Strings(map[string]string{
		pb.FieldMobile:    lease.Mobile,
		pb.FieldRequester: lease.Requester,
	}), nil
}

func (s *Server) List(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	views := s.svc.List(ctx)

	items := make([]*structpb.Value, 0, len(views))
	for _, v := range views {
		fields := map[string]string{
			pb.FieldMobile: v.Mobile,
			pb.FieldStatus: v.Status.String(),
		}
		if v.Leased() {
			fields[pb.FieldRequester] = v.Requester
			fields[pb.FieldMade] = hstime.FormatLocal(v.Made)
			fields[pb.FieldDue] = hstime.FormatLocal(v.Due)
		}
		items = append(items, structpb.NewStructValue(pb.Strings(fields)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.FieldMobiles: structpb.NewListValue(&structpb.ListValue{Values: items}),
		},
	}, nil
}

func (s *Server) Ping(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return pb.Strings(map[string]string{
		pb.FieldNow: hstime.FormatLocal(s.svc.Now()),
	}), nil
}

func leaseMessage(lease types.Lease) *structpb.Struct {
	return pb.Strings(map[string]string{
		pb.FieldMobile:    lease.Mobile,
		pb.FieldRequester: lease.Requester,
		pb.FieldMade:      hstime.FormatLocal(lease.Made),
		pb.FieldDue:       hstime.FormatLocal(lease.Due),
	})
}

// rejects calls the limiter does not allow, health checks pass through
func RateLimitInterceptor(l limiter.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if l != nil && strings.HasPrefix(info.FullMethod, "/"+pb.ServiceName+"/") && !l.Allow() {
			metrics.RateLimitedTotal.WithLabelValues("grpc").Inc()
			return nil, rateLimitedError()
		}
		return handler(ctx, req)
	}
}

// builds a grpc.Server with the mobile and health services registered
// the returned health server reports SERVING until Shutdown is called on it
func NewGRPCServer(svc *booking.Service, l limiter.Limiter, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(RateLimitInterceptor(l)))
	grpcServer := grpc.NewServer(opts...)

	pb.RegisterMobileServiceServer(grpcServer, NewServer(svc))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}
