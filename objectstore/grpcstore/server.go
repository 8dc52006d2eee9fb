package grpcstore

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cimcore/cim/objectstore"
)

// Server exposes an objectstore.Backend over the Backend gRPC service.
type Server struct {
	UnimplementedBackendServer
	Backend objectstore.Backend
}

func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, key, data, err := unpackPut(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Backend.Put(bucket, key, data); err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, key, err := unpackKV(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	data, err := s.Backend.Get(bucket, key)
	if err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bytes(data), nil
}

func (s *Server) Delete(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, key, err := unpackKV(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Backend.Delete(bucket, key); err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Server) Exists(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, key, err := unpackKV(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ok, err := s.Backend.Exists(bucket, key)
	if err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Server) List(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, prefix, err := unpackListRequest(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	keys, err := s.Backend.List(bucket, prefix)
	if err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bytes(packListResponse(keys)), nil
}

func (s *Server) Info(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	bucket, key, err := unpackKV(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	info, err := s.Backend.Info(bucket, key)
	if err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bytes(packInfoResponse(info.Size, info.Created.UnixNano(), info.Modified.UnixNano())), nil
}

func (s *Server) CreateBucket(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BoolValue, error) {
	_ = ctx
	if s == nil || s.Backend == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing backend")
	}
	name, replicas, ttlSeconds, err := unpackCreateBucket(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	opts := objectstore.BucketOptions{Replicas: int(replicas)}
	if ttlSeconds > 0 {
		opts.TTL = time.Duration(ttlSeconds) * time.Second
	}
	if err := s.Backend.CreateBucket(name, opts); err != nil {
		return nil, serverErr(err)
	}
	return wrapperspb.Bool(true), nil
}
