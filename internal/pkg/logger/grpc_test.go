package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptor(t *testing.T) {
	interceptor := UnaryServerInterceptor(NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	tests := []struct {
		name     string
		ctx      context.Context
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success",
			ctx:  context.Background(),
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "request id from metadata",
			ctx: metadata.NewIncomingContext(context.Background(), metadata.MD{
				requestIDMetadataKey: []string{"md-id"},
			}),
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				if GetRequestID(ctx) != "md-id" {
					return nil, status.Error(codes.FailedPrecondition, "request id not propagated")
				}
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "handler error",
			ctx:  context.Background(),
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.Unavailable, "down")
			},
			wantCode: codes.Unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(tt.ctx, nil, info, tt.handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestUnaryServerInterceptor_SkipMethods(t *testing.T) {
	interceptor := UnaryServerInterceptor(NewNop(), "/skip.Me/Now")

	var gotID string
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/skip.Me/Now"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			gotID = GetRequestID(ctx)
			return nil, nil
		})

	require.NoError(t, err)
	assert.Empty(t, gotID)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(NewNop())

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x.Y/Z"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})

	assert.Equal(t, codes.Internal, status.Code(err))
}
