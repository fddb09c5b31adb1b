package igrpc

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

)

const serviceName = "social.v1.RelationshipInternal"

// RelationshipInternalServer answers relationship predicates for sibling
// services. Requests carry {"user_id", "other_id"}.
type RelationshipInternalServer interface {
	AreFriends(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	IsBlocked(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	CanMessage(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
}

// RelationshipReader is satisfied by services.RelationshipService.
type RelationshipReader interface {
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error)
}

// MessageGate is satisfied by services.MessagingService.
type MessageGate interface {
	CanMessage(ctx context.Context, senderID, receiverID int64) (bool, error)
}

type RelationshipGRPCServer struct {
	relationships RelationshipReader
	gate          MessageGate
}

func NewRelationshipGRPCServer(relationships RelationshipReader, gate MessageGate) *RelationshipGRPCServer {
	return &RelationshipGRPCServer{relationships: relationships, gate: gate}
}

func StartGRPCServer(ctx context.Context, addr string, impl RelationshipInternalServer, logger *zap.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	RegisterRelationshipInternalServer(srv, impl)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	logger.Info("gRPC server listening", zap.String("addr", addr))
	return srv, nil
}

// AreFriends is symmetric in user_id and other_id.
func (s *RelationshipGRPCServer) AreFriends(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, otherID, err := pair(req)
	if err != nil {
		return nil, err
	}
	friends, err := s.relationships.IsFriend(ctx, userID, otherID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to check friendship: %v", err)
	}
	return wrapperspb.Bool(friends), nil
}

// IsBlocked reports whether user_id has blocked other_id.
func (s *RelationshipGRPCServer) IsBlocked(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, otherID, err := pair(req)
	if err != nil {
		return nil, err
	}
	blocked, err := s.relationships.IsBlocked(ctx, userID, otherID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to check block: %v", err)
	}
	return wrapperspb.Bool(blocked), nil
}

// CanMessage reports whether user_id may message other_id.
func (s *RelationshipGRPCServer) CanMessage(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	userID, otherID, err := pair(req)
	if err != nil {
		return nil, err
	}
	allowed, err := s.gate.CanMessage(ctx, userID, otherID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to check messaging gate: %v", err)
	}
	return wrapperspb.Bool(allowed), nil
}

func pair(req *structpb.Struct) (int64, int64, error) {
	fields := req.GetFields()
	userID := int64(fields["user_id"].GetNumberValue())
	otherID := int64(fields["other_id"].GetNumberValue())
	if userID <= 0 || otherID <= 0 {
		return 0, 0, status.Error(codes.InvalidArgument, "user_id and other_id must be positive")
	}
	return userID, otherID, nil
}

func RegisterRelationshipInternalServer(s grpc.ServiceRegistrar, impl RelationshipInternalServer) {
	s.RegisterService(&relationshipInternalServiceDesc, impl)
}

func unaryHandler(method string, call func(RelationshipInternalServer, context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(RelationshipInternalServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(impl, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var relationshipInternalServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RelationshipInternalServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("AreFriends", RelationshipInternalServer.AreFriends),
		unaryHandler("IsBlocked", RelationshipInternalServer.IsBlocked),
		unaryHandler("CanMessage", RelationshipInternalServer.CanMessage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "social/v1/relationship.proto",
}
