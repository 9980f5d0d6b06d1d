// Package registryapi describes the gRPC contract shared by the registry server and its clients.
// Messages are google.protobuf.Struct values so no generated code is needed on either side.
package registryapi

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "userregistry.Registry"

// Full method names.
const (
	MethodRegister = "/" + ServiceName + "/Register"
	MethodGetUser  = "/" + ServiceName + "/GetUser"
)

// Message field names.
const (
	FieldID        = "id"
	FieldUsername  = "user_name"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldCreatedAt = "created_at"
)

// User is the decoded form of a user message.
type User struct {
	ID        int
	Username  string
	Role      string
	CreatedAt time.Time
}

// NewRegisterRequest builds the Register request message.
func NewRegisterRequest(username, password, role string) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldUsername: structpb.NewStringValue(username),
		FieldPassword: structpb.NewStringValue(password),
	}
	if role != "" {
		fields[FieldRole] = structpb.NewStringValue(role)
	}
	return &structpb.Struct{Fields: fields}
}

// NewGetUserByIDRequest builds a GetUser request that looks a user up by ID.
func NewGetUserByIDRequest(id int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID: structpb.NewNumberValue(float64(id)),
	}}
}

// NewGetUserByUsernameRequest builds a GetUser request that looks a user up by username.
func NewGetUserByUsernameRequest(username string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldUsername: structpb.NewStringValue(username),
	}}
}

// EncodeUser converts a user into its wire message.
func EncodeUser(u User) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:        structpb.NewNumberValue(float64(u.ID)),
		FieldUsername:  structpb.NewStringValue(u.Username),
		FieldRole:      structpb.NewStringValue(u.Role),
		FieldCreatedAt: structpb.NewStringValue(u.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}}
}

// DecodeUser converts a wire message into a User.
func DecodeUser(s *structpb.Struct) (User, error) {
	var u User

	id, ok := Number(s, FieldID)
	if !ok {
		return u, fmt.Errorf("user message is missing %q", FieldID)
	}
	u.ID = int(id)
	u.Username = String(s, FieldUsername)
	u.Role = String(s, FieldRole)

	if raw := String(s, FieldCreatedAt); raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return u, fmt.Errorf("user message has malformed %q: %w", FieldCreatedAt, err)
		}
		u.CreatedAt = createdAt
	}

	return u, nil
}

// String returns the string field with the given name, or "" when absent or of another kind.
func String(s *structpb.Struct, name string) string {
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return ""
	}
	return sv.StringValue
}

// Number returns the numeric field with the given name and whether it was present.
func Number(s *structpb.Struct, name string) (float64, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return nv.NumberValue, true
}
