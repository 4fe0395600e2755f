// Package grpcapi exposes the recommendation use case over gRPC. Messages
// are google.protobuf.Struct so no generated code is needed; the service
// descriptor below is what protoc-gen-go-grpc would emit for
//
//	service RecommendationService {
//	  rpc Recommend(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "shoppingagent.v1.RecommendationService"

const recommendMethod = "/" + ServiceName + "/Recommend"

// RecommendationServer is the server API for RecommendationService.
type RecommendationServer interface {
	Recommend(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRecommendationServer registers srv on s.
func RegisterRecommendationServer(s grpc.ServiceRegistrar, srv RecommendationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func recommendHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecommendationServer).Recommend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: recommendMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RecommendationServer).Recommend(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for RecommendationService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecommendationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Recommend",
			Handler:    recommendHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shoppingagent/v1/recommendation.proto",
}

// RecommendationClient is the client API for RecommendationService.
type RecommendationClient struct {
	cc grpc.ClientConnInterface
}

// NewRecommendationClient returns a client over cc.
func NewRecommendationClient(cc grpc.ClientConnInterface) *RecommendationClient {
	return &RecommendationClient{cc: cc}
}

// Recommend calls RecommendationService/Recommend.
func (c *RecommendationClient) Recommend(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, recommendMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
