package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// CallObserver учитывает завершённые RPC (metrics.Collector).
type CallObserver interface {
	ObserveGRPC(method, code string)
}

type ServerOptions struct {
	Logger     *zap.Logger
	Observer   CallObserver
	Reflection bool
}

// NewServer собирает gRPC-сервер: AdmissionService, health и, по желанию, reflection.
func NewServer(admitter Admitter, opts ServerOptions) (*grpc.Server, *health.Server) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingInterceptor(log, opts.Observer),
		RecoveryInterceptor(log),
	))

	RegisterAdmissionServer(srv, NewAdmissionService(admitter, log))

	hs := health.NewServer()
	hs.SetServingStatus(AdmissionServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	if opts.Reflection {
		reflection.Register(srv)
	}
	return srv, hs
}

// LoggingInterceptor пишет по строке на RPC и отдаёт код наблюдателю.
func LoggingInterceptor(log *zap.Logger, obs CallObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		if obs != nil {
			obs.ObserveGRPC(info.FullMethod, code.String())
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(started)),
		}
		switch code {
		case codes.OK, codes.NotFound, codes.AlreadyExists, codes.InvalidArgument, codes.Canceled:
			log.Info("grpc request", fields...)
		default:
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}

// RecoveryInterceptor превращает панику в обработчике в codes.Internal.
func RecoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc panic recovered", zap.String("method", info.FullMethod), zap.Any("panic", r), zap.Stack("stack"))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
