package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/MSSkowron/userregistry/internal/dto"
	"github.com/MSSkowron/userregistry/internal/service"
	"github.com/MSSkowron/userregistry/pkg/logger"
	"github.com/MSSkowron/userregistry/pkg/registryapi"
	"github.com/MSSkowron/userregistry/pkg/validation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type contextKey string

const (
	// DefaultAddress is the default address the server listens on.
	DefaultAddress = ":5001"

	contextKeyRPCID = contextKey("rpcID")
)

// RegistryServer is the server API for the userregistry.Registry service.
type RegistryServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var registryServiceDesc = grpc.ServiceDesc{
	ServiceName: registryapi.ServiceName,
	HandlerType: (*RegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    unaryHandler(registryapi.MethodRegister, RegistryServer.Register),
		},
		{
			MethodName: "GetUser",
			Handler:    unaryHandler(registryapi.MethodGetUser, RegistryServer.GetUser),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "userregistry.proto",
}

func unaryHandler(fullMethod string, call func(RegistryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RegistryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RegistryServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server represents the gRPC API server.
type Server struct {
	userService service.UserService

	address    string
	grpcServer *grpc.Server
}

// NewServer creates a new gRPC registry server.
func NewServer(userService service.UserService, opts ...Opt) *Server {
	server := &Server{
		userService: userService,
		address:     DefaultAddress,
	}

	for _, opt := range opts {
		opt(server)
	}

	server.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(server.unaryLogInterceptor))
	server.grpcServer.RegisterService(&registryServiceDesc, server)

	return server
}

// Opt is a function signature for providing options to configure the Server.
type Opt func(*Server)

// WithAddress is an option to set the server address.
func WithAddress(address string) Opt {
	return func(s *Server) {
		s.address = address
	}
}

// ListenAndServe starts listening on the configured address and serves until the server is stopped.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to create tcp listener on %s: %w", s.address, err)
	}

	return s.Serve(ln)
}

// Serve serves gRPC requests on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("gRPC server is listening", "address", ln.Addr().String())

	if err := s.grpcServer.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to run grpc server on %s: %w", ln.Addr().String(), err)
	}

	return nil
}

// Shutdown stops accepting new RPCs and waits for in-flight ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}

// Register implements RegistryServer.
func (s *Server) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userDTO, err := s.userService.RegisterUser(ctx, &dto.UserRegisterDTO{
		Username: registryapi.String(req, registryapi.FieldUsername),
		Password: registryapi.String(req, registryapi.FieldPassword),
		Role:     registryapi.String(req, registryapi.FieldRole),
	})
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	return encodeUser(userDTO), nil
}

// GetUser implements RegistryServer. The user is looked up by ID when present, by username otherwise.
func (s *Server) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		userDTO *dto.UserDTO
		err     error
	)

	if id, ok := registryapi.Number(req, registryapi.FieldID); ok {
		if id != math.Trunc(id) || id < 1 || id > math.MaxInt32 {
			return nil, status.Errorf(codes.InvalidArgument, "Invalid user ID: %v", id)
		}
		userDTO, err = s.userService.GetUser(ctx, int(id))
	} else {
		userDTO, err = s.userService.GetUserByUsername(ctx, registryapi.String(req, registryapi.FieldUsername))
	}
	if err != nil {
		return nil, s.toStatusError(ctx, err)
	}

	return encodeUser(userDTO), nil
}

func (s *Server) toStatusError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, validation.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return status.Error(codes.NotFound, "User not found.")
	default:
		rpcID, _ := ctx.Value(contextKeyRPCID).(string)
		logger.Error("RPC failed", "rpc_id", rpcID, "error", err.Error())
		return status.Error(codes.Internal, "Internal server error.")
	}
}

func encodeUser(u *dto.UserDTO) *structpb.Struct {
	return registryapi.EncodeUser(registryapi.User{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
}
