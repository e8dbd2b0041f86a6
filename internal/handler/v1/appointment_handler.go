package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/model"
	"github.com/Leganyst/booking-scheduler/internal/repository"
)

// Admitter — решение о допуске записи (calendar.Admitter).
type Admitter interface {
	AdmitCreate(ctx context.Context, req calendar.CreateRequest) (*model.Appointment, error)
	AdmitUpdate(ctx context.Context, id uuid.UUID, req calendar.UpdateRequest) (*model.Appointment, error)
}

type createAppointmentRequest struct {
	ClientID        uuid.UUID               `json:"client_id" binding:"required"`
	ProviderID      uuid.UUID               `json:"provider_id" binding:"required"`
	RoomID          *uuid.UUID              `json:"room_id"`
	StartTime       time.Time               `json:"start_time" binding:"required"`
	EndTime         time.Time               `json:"end_time" binding:"required"`
	AppointmentType *string                 `json:"appointment_type"`
	Priority        model.Priority          `json:"priority"`
	Status          model.AppointmentStatus `json:"status"`
}

type AppointmentHandler struct {
	admitter     Admitter
	appointments repository.AppointmentRepository
	events       repository.EventRepository
	log          *zap.Logger
}

func NewAppointmentHandler(
	admitter Admitter,
	appointments repository.AppointmentRepository,
	events repository.EventRepository,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{admitter: admitter, appointments: appointments, events: events, log: log}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.admitter.AdmitCreate(c.Request.Context(), calendar.CreateRequest{
		ClientID:        req.ClientID,
		ProviderID:      req.ProviderID,
		RoomID:          req.RoomID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		AppointmentType: req.AppointmentType,
		Priority:        req.Priority,
		Status:          req.Status,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	var filter repository.AppointmentFilter
	var ok bool
	if filter.ClientID, ok = parseQueryUUID(c, "client_id"); !ok {
		return
	}
	if filter.ProviderID, ok = parseQueryUUID(c, "provider_id"); !ok {
		return
	}
	if filter.RoomID, ok = parseQueryUUID(c, "room_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := model.AppointmentStatus(raw)
		filter.Status = &status
	}
	if filter.From, ok = parseQueryTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = parseQueryTime(c, "to"); !ok {
		return
	}

	page, err := h.appointments.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, page)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectAppointmentNotFound))
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	body, ok := bindPatch(c)
	if !ok {
		return
	}
	req, err := body.appointmentUpdate()
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	a, err := h.admitter.AdmitUpdate(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.appointments.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectAppointmentNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

// Events — история изменений записи. Доступна и после удаления.
func (h *AppointmentHandler) Events(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	events, err := h.events.ListByAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	respondOK(c, events)
}

func parseQueryTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, "invalid "+key+": must be an RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}

// appointmentUpdate переводит тело PATCH в частичное изменение записи.
func (p patchBody) appointmentUpdate() (calendar.UpdateRequest, error) {
	var req calendar.UpdateRequest

	var clientID, providerID uuid.UUID
	if present, _, err := p.decode("client_id", false, &clientID); err != nil {
		return req, err
	} else if present {
		req.ClientID = &clientID
	}
	if present, _, err := p.decode("provider_id", false, &providerID); err != nil {
		return req, err
	} else if present {
		req.ProviderID = &providerID
	}

	var roomID uuid.UUID
	if present, null, err := p.decode("room_id", true, &roomID); err != nil {
		return req, err
	} else if present {
		req.RoomID = calendar.ClearField[uuid.UUID]()
		if !null {
			req.RoomID = calendar.SetField(roomID)
		}
	}

	var start, end time.Time
	if present, _, err := p.decode("start_time", false, &start); err != nil {
		return req, err
	} else if present {
		req.StartTime = &start
	}
	if present, _, err := p.decode("end_time", false, &end); err != nil {
		return req, err
	} else if present {
		req.EndTime = &end
	}

	var typ string
	if present, null, err := p.decode("appointment_type", true, &typ); err != nil {
		return req, err
	} else if present {
		req.AppointmentType = calendar.ClearField[string]()
		if !null {
			req.AppointmentType = calendar.SetField(typ)
		}
	}

	var priority model.Priority
	if present, _, err := p.decode("priority", false, &priority); err != nil {
		return req, err
	} else if present {
		req.Priority = &priority
	}

	var status model.AppointmentStatus
	if present, _, err := p.decode("status", false, &status); err != nil {
		return req, err
	} else if present {
		req.Status = &status
	}

	return req, nil
}
