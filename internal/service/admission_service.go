package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/model"
)

const (
	AdmissionServiceName = "scheduling.v1.AdmissionService"

	createAppointmentMethod = "/" + AdmissionServiceName + "/CreateAppointment"
	updateAppointmentMethod = "/" + AdmissionServiceName + "/UpdateAppointment"
)

// Admitter — решение о допуске записи (calendar.Admitter).
type Admitter interface {
	AdmitCreate(ctx context.Context, req calendar.CreateRequest) (*model.Appointment, error)
	AdmitUpdate(ctx context.Context, id uuid.UUID, req calendar.UpdateRequest) (*model.Appointment, error)
}

type CreateAppointmentRequest struct {
	ClientID        string                  `json:"client_id"`
	ProviderID      string                  `json:"provider_id"`
	RoomID          *string                 `json:"room_id,omitempty"`
	StartTime       time.Time               `json:"start_time"`
	EndTime         time.Time               `json:"end_time"`
	AppointmentType *string                 `json:"appointment_type,omitempty"`
	Priority        model.Priority          `json:"priority,omitempty"`
	Status          model.AppointmentStatus `json:"status,omitempty"`
}

// UpdateAppointmentRequest применяет только поля из UpdateMask.
// room_id и appointment_type из маски со значением null обнуляются.
type UpdateAppointmentRequest struct {
	ID         string   `json:"id"`
	UpdateMask []string `json:"update_mask"`

	ClientID        *string                  `json:"client_id,omitempty"`
	ProviderID      *string                  `json:"provider_id,omitempty"`
	RoomID          *string                  `json:"room_id,omitempty"`
	StartTime       *time.Time               `json:"start_time,omitempty"`
	EndTime         *time.Time               `json:"end_time,omitempty"`
	AppointmentType *string                  `json:"appointment_type,omitempty"`
	Priority        *model.Priority          `json:"priority,omitempty"`
	Status          *model.AppointmentStatus `json:"status,omitempty"`
}

type AppointmentResponse struct {
	Appointment *model.Appointment `json:"appointment"`
}

type AdmissionServer interface {
	CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, req *UpdateAppointmentRequest) (*AppointmentResponse, error)
}

type AdmissionService struct {
	admitter Admitter
	log      *zap.Logger
}

var _ AdmissionServer = (*AdmissionService)(nil)

func NewAdmissionService(admitter Admitter, log *zap.Logger) *AdmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdmissionService{admitter: admitter, log: log}
}

func (s *AdmissionService) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error) {
	clientID, err := requiredUUID("client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	providerID, err := requiredUUID("provider_id", req.ProviderID)
	if err != nil {
		return nil, err
	}
	roomID, err := optionalUUID("room_id", req.RoomID)
	if err != nil {
		return nil, err
	}

	a, err := s.admitter.AdmitCreate(ctx, calendar.CreateRequest{
		ClientID:        clientID,
		ProviderID:      providerID,
		RoomID:          roomID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		AppointmentType: req.AppointmentType,
		Priority:        req.Priority,
		Status:          req.Status,
	})
	if err != nil {
		return nil, toStatus(s.log, createAppointmentMethod, err)
	}
	return &AppointmentResponse{Appointment: a}, nil
}

func (s *AdmissionService) UpdateAppointment(ctx context.Context, req *UpdateAppointmentRequest) (*AppointmentResponse, error) {
	id, err := requiredUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	upd, err := req.toUpdate()
	if err != nil {
		return nil, err
	}

	a, err := s.admitter.AdmitUpdate(ctx, id, upd)
	if err != nil {
		return nil, toStatus(s.log, updateAppointmentMethod, err)
	}
	return &AppointmentResponse{Appointment: a}, nil
}

func (r *UpdateAppointmentRequest) toUpdate() (calendar.UpdateRequest, error) {
	var upd calendar.UpdateRequest

	for _, path := range r.UpdateMask {
		switch path {
		case "client_id":
			id, err := requiredUUID(path, deref(r.ClientID))
			if err != nil {
				return upd, err
			}
			upd.ClientID = &id
		case "provider_id":
			id, err := requiredUUID(path, deref(r.ProviderID))
			if err != nil {
				return upd, err
			}
			upd.ProviderID = &id
		case "room_id":
			id, err := optionalUUID(path, r.RoomID)
			if err != nil {
				return upd, err
			}
			upd.RoomID = calendar.ClearField[uuid.UUID]()
			if id != nil {
				upd.RoomID = calendar.SetField(*id)
			}
		case "start_time":
			if r.StartTime == nil {
				return upd, notNull(path)
			}
			upd.StartTime = r.StartTime
		case "end_time":
			if r.EndTime == nil {
				return upd, notNull(path)
			}
			upd.EndTime = r.EndTime
		case "appointment_type":
			upd.AppointmentType = calendar.ClearField[string]()
			if r.AppointmentType != nil {
				upd.AppointmentType = calendar.SetField(*r.AppointmentType)
			}
		case "priority":
			if r.Priority == nil {
				return upd, notNull(path)
			}
			upd.Priority = r.Priority
		case "status":
			if r.Status == nil {
				return upd, notNull(path)
			}
			upd.Status = r.Status
		default:
			return upd, status.Errorf(codes.InvalidArgument, "unknown update_mask path %q", path)
		}
	}
	return upd, nil
}

func requiredUUID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s must be a valid UUID", field)
	}
	return id, nil
}

func optionalUUID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := requiredUUID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func notNull(field string) error {
	return status.Errorf(codes.InvalidArgument, "%s must not be null", field)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RegisterAdmissionServer регистрирует сервис на gRPC-сервере.
func RegisterAdmissionServer(s grpc.ServiceRegistrar, srv AdmissionServer) {
	s.RegisterService(&admissionServiceDesc, srv)
}

// admissionServiceDesc повторяет internal/api/scheduling/v1/admission.proto.
var admissionServiceDesc = grpc.ServiceDesc{
	ServiceName: AdmissionServiceName,
	HandlerType: (*AdmissionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAppointment", Handler: createAppointmentHandler},
		{MethodName: "UpdateAppointment", Handler: updateAppointmentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scheduling/v1/admission.proto",
}

func createAppointmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateAppointmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionServer).CreateAppointment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createAppointmentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdmissionServer).CreateAppointment(ctx, req.(*CreateAppointmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateAppointmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateAppointmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdmissionServer).UpdateAppointment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateAppointmentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AdmissionServer).UpdateAppointment(ctx, req.(*UpdateAppointmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AdmissionClient — клиент AdmissionService поверх JSON-кодека.
type AdmissionClient struct {
	cc grpc.ClientConnInterface
}

func NewAdmissionClient(cc grpc.ClientConnInterface) *AdmissionClient {
	return &AdmissionClient{cc: cc}
}

func (c *AdmissionClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.cc.Invoke(ctx, createAppointmentMethod, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdmissionClient) UpdateAppointment(ctx context.Context, in *UpdateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.cc.Invoke(ctx, updateAppointmentMethod, in, out, c.callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AdmissionClient) callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
