package igrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RelationshipClient is what sibling services use to ask relationship questions.
type RelationshipClient struct {
	conn grpc.ClientConnInterface
	own  *grpc.ClientConn
}

func NewRelationshipClient(addr string) (*RelationshipClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("relationship gRPC address is required")
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial relationship gRPC: %w", err)
	}
	return &RelationshipClient{conn: conn, own: conn}, nil
}

// NewRelationshipClientFromConn wraps an existing connection; Close leaves it open.
func NewRelationshipClientFromConn(conn grpc.ClientConnInterface) *RelationshipClient {
	return &RelationshipClient{conn: conn}
}

func (c *RelationshipClient) Close() error {
	if c.own == nil {
		return nil
	}
	return c.own.Close()
}

func (c *RelationshipClient) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	return c.invoke(ctx, "AreFriends", userID, otherID)
}

func (c *RelationshipClient) IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	return c.invoke(ctx, "IsBlocked", blockerID, blockedID)
}

func (c *RelationshipClient) CanMessage(ctx context.Context, senderID, receiverID int64) (bool, error) {
	return c.invoke(ctx, "CanMessage", senderID, receiverID)
}

func (c *RelationshipClient) invoke(ctx context.Context, method string, userID, otherID int64) (bool, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"user_id":  userID,
		"other_id": otherID,
	})
	if err != nil {
		return false, err
	}
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, req, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
