package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
)

// toStatus переводит результат допуска в gRPC-статус.
// Код отказа (CLIENT_DOUBLE_BOOKED и т.п.) уходит в детали статуса.
func toStatus(log *zap.Logger, method string, err error) error {
	if rej, ok := calendar.AsRejection(err); ok {
		st := status.New(rejectionCode(rej.Kind), rej.Message)
		if detailed, derr := st.WithDetails(wrapperspb.String(rej.Kind.String())); derr == nil {
			st = detailed
		}
		return st.Err()
	}

	switch {
	case calendar.IsInfrastructure(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, calendar.ErrSerialization):
		log.Error("storage unavailable", zap.String("method", method), zap.Error(err))
		return status.Error(codes.Unavailable, "storage temporarily unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		log.Error("unexpected error", zap.String("method", method), zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func rejectionCode(kind calendar.RejectionKind) codes.Code {
	switch {
	case kind.IsNotFound():
		return codes.NotFound
	case kind.IsDoubleBooking():
		return codes.AlreadyExists
	}
	switch kind {
	case calendar.RejectInvalidInterval, calendar.RejectInvalidPriority, calendar.RejectEmptyUpdate:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// RejectionCode достаёт код отказа из ошибки, полученной от AdmissionService.
func RejectionCode(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if v, ok := d.(*wrapperspb.StringValue); ok {
			return v.GetValue(), true
		}
	}
	return "", false
}
