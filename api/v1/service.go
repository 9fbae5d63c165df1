// Package v1 describes the handset.v1.MobileService gRPC service.
//
// Messages are google.protobuf.Struct values carrying the same fields as the
// HTTP gateway's JSON bodies, so the service needs no generated message types.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "handset.v1.MobileService"

const (
	BookMethod   = "/" + ServiceName + "/Book"
	ReturnMethod = "/" + ServiceName + "/Return"
	ListMethod   = "/" + ServiceName + "/List"
	PingMethod   = "/" + ServiceName + "/Ping"
)

// Message field names.
const (
	FieldMobile    = "mobile"
	FieldRequester = "requester"
	FieldMade      = "made"
	FieldDue       = "due"
	FieldStatus    = "status"
	FieldMobiles   = "mobiles"
	FieldNow       = "now"
)

// Error reasons attached to failed calls as google.rpc.ErrorInfo.
const (
	ErrorDomain         = "handset"
	ReasonInvalid       = "INVALID_REQUEST"
	ReasonInvalidDue    = "INVALID_DUE"
	ReasonInUse         = "IN_USE"
	ReasonUnknownMobile = "UNKNOWN_MOBILE"
	ReasonNotFound      = "NOT_FOUND"
	ReasonForbidden     = "FORBIDDEN"
	MetadataHolder      = "holder"
)

// MobileServiceServer is the server API for MobileService.
type MobileServiceServer interface {
	Book(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Return(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterMobileServiceServer(s grpc.ServiceRegistrar, srv MobileServiceServer) {
	s.RegisterService(&MobileService_ServiceDesc, srv)
}

type structCall func(MobileServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MobileServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MobileServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var MobileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MobileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Book",
			Handler:    unaryHandler(BookMethod, MobileServiceServer.Book),
		},
		{
			MethodName: "Return",
			Handler:    unaryHandler(ReturnMethod, MobileServiceServer.Return),
		},
		{
			MethodName: "List",
			Handler:    unaryHandler(ListMethod, MobileServiceServer.List),
		},
		{
			MethodName: "Ping",
			Handler:    unaryHandler(PingMethod, MobileServiceServer.Ping),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "handset/v1/mobile.proto",
}

// MobileServiceClient is the client API for MobileService.
type MobileServiceClient interface {
	Book(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Return(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type mobileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMobileServiceClient(cc grpc.ClientConnInterface) MobileServiceClient {
	return &mobileServiceClient{cc}
}

func (c *mobileServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mobileServiceClient) Book(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, BookMethod, in, opts...)
}

func (c *mobileServiceClient) Return(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ReturnMethod, in, opts...)
}

func (c *mobileServiceClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListMethod, in, opts...)
}

func (c *mobileServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PingMethod, in, opts...)
}

// Strings builds a message with string fields only.
func Strings(fields map[string]string) *structpb.Struct {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
	for k, v := range fields {
		out.Fields[k] = structpb.NewStringValue(v)
	}
	return out
}

// GetString returns the string field key, or "" when it is missing or not a string.
func GetString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}
