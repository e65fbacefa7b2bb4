package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "caseledger.v1.CaseLedger"

// Full method names.
const (
	MethodListCases        = "/" + ServiceName + "/ListCases"
	MethodGetCase          = "/" + ServiceName + "/GetCase"
	MethodTransferCase     = "/" + ServiceName + "/TransferCase"
	MethodDeleteCase       = "/" + ServiceName + "/DeleteCase"
	MethodListOfficerNames = "/" + ServiceName + "/ListOfficerNames"
	MethodGetStats         = "/" + ServiceName + "/GetStats"
)

// CaseLedgerServer is the server API. Requests and responses are Struct messages whose
// fields follow the REST JSON names.
type CaseLedgerServer interface {
	ListCases(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransferCase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOfficerNames(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedCaseLedgerServer returns Unimplemented for every method.
type UnimplementedCaseLedgerServer struct{}

func (UnimplementedCaseLedgerServer) ListCases(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCases not implemented")
}
func (UnimplementedCaseLedgerServer) GetCase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCase not implemented")
}
func (UnimplementedCaseLedgerServer) TransferCase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method TransferCase not implemented")
}
func (UnimplementedCaseLedgerServer) DeleteCase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteCase not implemented")
}
func (UnimplementedCaseLedgerServer) ListOfficerNames(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOfficerNames not implemented")
}
func (UnimplementedCaseLedgerServer) GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStats not implemented")
}

// RegisterCaseLedgerServer registers srv on s.
func RegisterCaseLedgerServer(s grpc.ServiceRegistrar, srv CaseLedgerServer) {
	s.RegisterService(&CaseLedgerServiceDesc, srv)
}

func unaryHandler(method string, call func(CaseLedgerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CaseLedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CaseLedgerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CaseLedgerServiceDesc describes the service for grpc.Server.
var CaseLedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CaseLedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCases", Handler: unaryHandler(MethodListCases, CaseLedgerServer.ListCases)},
		{MethodName: "GetCase", Handler: unaryHandler(MethodGetCase, CaseLedgerServer.GetCase)},
		{MethodName: "TransferCase", Handler: unaryHandler(MethodTransferCase, CaseLedgerServer.TransferCase)},
		{MethodName: "DeleteCase", Handler: unaryHandler(MethodDeleteCase, CaseLedgerServer.DeleteCase)},
		{MethodName: "ListOfficerNames", Handler: unaryHandler(MethodListOfficerNames, CaseLedgerServer.ListOfficerNames)},
		{MethodName: "GetStats", Handler: unaryHandler(MethodGetStats, CaseLedgerServer.GetStats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "caseledger/v1/caseledger.proto",
}

// CaseLedgerClient is the client API.
type CaseLedgerClient interface {
	ListCases(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	TransferCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListOfficerNames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type caseLedgerClient struct {
	cc grpc.ClientConnInterface
}

// NewCaseLedgerClient wraps a connection.
func NewCaseLedgerClient(cc grpc.ClientConnInterface) CaseLedgerClient {
	return &caseLedgerClient{cc: cc}
}

func (c *caseLedgerClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *caseLedgerClient) ListCases(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListCases, in, opts)
}
func (c *caseLedgerClient) GetCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetCase, in, opts)
}
func (c *caseLedgerClient) TransferCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodTransferCase, in, opts)
}
func (c *caseLedgerClient) DeleteCase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDeleteCase, in, opts)
}
func (c *caseLedgerClient) ListOfficerNames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListOfficerNames, in, opts)
}
func (c *caseLedgerClient) GetStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetStats, in, opts)
}
