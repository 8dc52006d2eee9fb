package grpcstore

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cimcore/cim/objectstore"
)

// Client implements objectstore.Backend over the Backend gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client BackendClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewBackendClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

func (c *Client) Put(bucket, key string, data []byte) error {
	ctx, cancel := c.ctx()
	defer cancel()
	_, err := c.client.Put(ctx, wrapperspb.Bytes(packPut(bucket, key, data)))
	return clientErr(err)
}

func (c *Client) Get(bucket, key string) ([]byte, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Get(ctx, wrapperspb.Bytes(packKV(bucket, key)))
	if err != nil {
		return nil, clientErr(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) Delete(bucket, key string) error {
	ctx, cancel := c.ctx()
	defer cancel()
	_, err := c.client.Delete(ctx, wrapperspb.Bytes(packKV(bucket, key)))
	return clientErr(err)
}

func (c *Client) Exists(bucket, key string) (bool, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Exists(ctx, wrapperspb.Bytes(packKV(bucket, key)))
	if err != nil {
		return false, clientErr(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) List(bucket, prefix string) ([]string, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.List(ctx, wrapperspb.Bytes(packListRequest(bucket, prefix)))
	if err != nil {
		return nil, clientErr(err)
	}
	return unpackListResponse(reply.GetValue())
}

func (c *Client) Info(bucket, key string) (objectstore.BlobInfo, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	reply, err := c.client.Info(ctx, wrapperspb.Bytes(packKV(bucket, key)))
	if err != nil {
		return objectstore.BlobInfo{}, clientErr(err)
	}
	size, created, modified, err := unpackInfoResponse(reply.GetValue())
	if err != nil {
		return objectstore.BlobInfo{}, err
	}
	return objectstore.BlobInfo{
		Size:     size,
		Created:  time.Unix(0, created),
		Modified: time.Unix(0, modified),
	}, nil
}

func (c *Client) CreateBucket(name string, opts objectstore.BucketOptions) error {
	ctx, cancel := c.ctx()
	defer cancel()
	ttlSeconds := int64(opts.TTL / time.Second)
	_, err := c.client.CreateBucket(ctx, wrapperspb.Bytes(packCreateBucket(name, int32(opts.Replicas), ttlSeconds)))
	return clientErr(err)
}

var _ objectstore.Backend = (*Client)(nil)
