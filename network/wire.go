package network

import (
	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/jsonx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Empty is the request of RPCs without parameters.
type Empty struct{}

// toStatus encodes the ServiceError as the status message so the client can
// restore it.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	se := errors.FromError(err)
	return status.Error(grpcCode(se.Code), se.Error())
}

func grpcCode(code errors.ServiceErrorCode) codes.Code {
	switch code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeMalformedChallenge:
		return codes.InvalidArgument
	case errors.ErrCodeExpiredChallenge, errors.ErrCodeFutureChallenge:
		return codes.FailedPrecondition
	case errors.ErrCodeInvalidSignature:
		return codes.Unauthenticated
	case errors.ErrCodeBlockNotFound:
		return codes.NotFound
	case errors.ErrCodeRateLimited:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// FromStatus turns an RPC error back into the *errors.ServiceError the server
// returned. Transport failures are reported as internal errors.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var se errors.ServiceError
	if jsonx.Unmarshal([]byte(st.Message()), &se) == nil && se.Code != "" {
		return &se
	}
	return errors.NewError(errors.ErrCodeInternal, st.Message())
}
