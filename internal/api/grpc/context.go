package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"orggov-backend/internal/api/grpc/interceptor"
)

// AccountIDFromContext extracts the authenticated account ID set by the
// auth interceptor.
func AccountIDFromContext(ctx context.Context) (int32, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	ids := md.Get(interceptor.AccountIDKey)
	if len(ids) == 0 {
		return 0, status.Errorf(codes.Unauthenticated, "account id is not provided in metadata")
	}

	id, err := strconv.ParseInt(ids[0], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid account id format: %v", err)
	}

	return int32(id), nil
}
