package grpc

import (
	"context"
	"time"

	"github.com/MSSkowron/userregistry/internal/metrics"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// unaryLogInterceptor tags each call with an ID and logs its outcome. Request messages
// are not logged since Register carries a password.
func (s *Server) unaryLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	rpcID := uuid.New().String()
	ctx = context.WithValue(ctx, contextKeyRPCID, rpcID)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.RequestsTotal.WithLabelValues("grpc", code.String()).Inc()
	logger.Info("Handled unary RPC",
		"rpc_id", rpcID,
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start).String(),
	)

	return resp, err
}
