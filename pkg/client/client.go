package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MSSkowron/userregistry/pkg/registryapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrUserAlreadyExists is returned when the requested username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidInput is returned when the server rejected the request arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// User represents a registered user as returned by the server.
type User = registryapi.User

// Client is a registry API client.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to the registry server at serverAddress.
// Extra dial options are appended after the default insecure transport credentials.
func NewClient(serverAddress string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.Dial(serverAddress, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return &Client{
		conn: conn,
	}, nil
}

// Register creates a new account. The server always assigns the default role,
// whatever role is passed.
func (c *Client) Register(ctx context.Context, username, password, role string) (User, error) {
	return c.call(ctx, registryapi.MethodRegister, registryapi.NewRegisterRequest(username, password, role))
}

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, id int) (User, error) {
	return c.call(ctx, registryapi.MethodGetUser, registryapi.NewGetUserByIDRequest(id))
}

// GetUserByUsername fetches a user by username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return c.call(ctx, registryapi.MethodGetUser, registryapi.NewGetUserByUsernameRequest(username))
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, req *structpb.Struct) (User, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return User{}, translateError(err)
	}

	return registryapi.DecodeUser(resp)
}

func translateError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrUserAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrUserNotFound, st.Message())
	default:
		return fmt.Errorf("rpc failed: %w", err)
	}
}
