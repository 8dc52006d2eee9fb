package grpcstore

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cimcore/cim/cimerrors"
)

// serverErr maps a cimerrors.CodedError (or plain error) returned by an
// objectstore.Backend into a grpc status error.
func serverErr(err error) error {
	if err == nil {
		return nil
	}
	var ce *cimerrors.CodedError
	if errors.As(err, &ce) {
		switch ce.Code {
		case cimerrors.NotFound:
			return status.Error(codes.NotFound, ce.Error())
		case cimerrors.InvalidContent, cimerrors.InvalidCID:
			return status.Error(codes.InvalidArgument, ce.Error())
		case cimerrors.CidMismatch:
			return status.Error(codes.DataLoss, ce.Error())
		case cimerrors.QuotaExceeded:
			return status.Error(codes.ResourceExhausted, ce.Error())
		case cimerrors.Cancelled:
			return status.Error(codes.Canceled, ce.Error())
		case cimerrors.DecryptionError:
			return status.Error(codes.PermissionDenied, ce.Error())
		default:
			return status.Error(codes.Internal, ce.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// clientErr maps a grpc status error from the wire back into a
// cimerrors.CodedError the caller can match with cimerrors.HasCode.
func clientErr(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return cimerrors.New(cimerrors.NotFound, st.Message())
	case codes.InvalidArgument:
		return cimerrors.New(cimerrors.InvalidContent, st.Message())
	case codes.DataLoss:
		return cimerrors.New(cimerrors.CidMismatch, st.Message())
	case codes.ResourceExhausted:
		return cimerrors.New(cimerrors.QuotaExceeded, st.Message())
	case codes.Canceled:
		return cimerrors.New(cimerrors.Cancelled, st.Message())
	case codes.PermissionDenied:
		return cimerrors.New(cimerrors.DecryptionError, st.Message())
	default:
		return cimerrors.New(cimerrors.StorageError, st.Message())
	}
}
