package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-scheduler/internal/calendar"
	"github.com/Leganyst/booking-scheduler/internal/model"
	"github.com/Leganyst/booking-scheduler/internal/repository"
)

type createProviderRequest struct {
	Name           string  `json:"name" binding:"required"`
	Specialization *string `json:"specialization"`
	Color          *string `json:"color"`
}

type createClientRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

type createRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity *int   `json:"capacity" binding:"omitempty,min=1"`
}

// DirectoryHandler — CRUD провайдеров, клиентов и комнат.
type DirectoryHandler struct {
	providers repository.ProviderRepository
	clients   repository.ClientRepository
	rooms     repository.RoomRepository
	log       *zap.Logger
}

func NewDirectoryHandler(
	providers repository.ProviderRepository,
	clients repository.ClientRepository,
	rooms repository.RoomRepository,
	log *zap.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{providers: providers, clients: clients, rooms: rooms, log: log}
}

func pageFromQuery(c *gin.Context) repository.PageRequest {
	return repository.PageRequest{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 0),
	}
}

// patchColumns разбирает PATCH справочника; пустое изменение — 400.
func (h *DirectoryHandler) patchColumns(c *gin.Context, required, optional []string) (map[string]any, bool) {
	body, ok := bindPatch(c)
	if !ok {
		return nil, false
	}
	fields, err := body.columns(required, optional)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return nil, false
	}
	if len(fields) == 0 {
		respondServiceError(c, h.log, calendar.Reject(calendar.RejectEmptyUpdate))
		return nil, false
	}
	return fields, true
}

// --- providers ---

func (h *DirectoryHandler) CreateProvider(c *gin.Context) {
	var req createProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	p := &model.Provider{Name: req.Name, Specialization: req.Specialization, Color: req.Color}
	if err := h.providers.Create(c.Request.Context(), p); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, p)
}

func (h *DirectoryHandler) ListProviders(c *gin.Context) {
	page, err := h.providers.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, page)
}

func (h *DirectoryHandler) GetProvider(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.providers.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectProviderNotFound))
		return
	}
	respondOK(c, p)
}

func (h *DirectoryHandler) UpdateProvider(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	fields, ok := h.patchColumns(c, []string{"name"}, []string{"specialization", "color"})
	if !ok {
		return
	}
	p, err := h.providers.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectProviderNotFound))
		return
	}
	respondOK(c, p)
}

func (h *DirectoryHandler) DeleteProvider(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.providers.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectProviderNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

// --- clients ---

func (h *DirectoryHandler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if !bindJSON(c, &req) {
		return
	}
	cl := &model.Client{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}
	if err := h.clients.Create(c.Request.Context(), cl); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, cl)
}

func (h *DirectoryHandler) ListClients(c *gin.Context) {
	page, err := h.clients.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, page)
}

func (h *DirectoryHandler) GetClient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	cl, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectClientNotFound))
		return
	}
	respondOK(c, cl)
}

func (h *DirectoryHandler) UpdateClient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	fields, ok := h.patchColumns(c, []string{"first_name", "last_name"}, []string{"email", "phone"})
	if !ok {
		return
	}
	cl, err := h.clients.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectClientNotFound))
		return
	}
	respondOK(c, cl)
}

func (h *DirectoryHandler) DeleteClient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectClientNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}

// --- rooms ---

func (h *DirectoryHandler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	rm := &model.Room{Name: req.Name}
	if req.Capacity != nil {
		rm.Capacity = *req.Capacity
	}
	if err := h.rooms.Create(c.Request.Context(), rm); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, rm)
}

func (h *DirectoryHandler) ListRooms(c *gin.Context) {
	page, err := h.rooms.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, page)
}

func (h *DirectoryHandler) GetRoom(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	rm, err := h.rooms.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectRoomNotFound))
		return
	}
	respondOK(c, rm)
}

func (h *DirectoryHandler) UpdateRoom(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	body, ok := bindPatch(c)
	if !ok {
		return
	}
	fields, err := body.columns([]string{"name"}, nil)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	var capacity int
	present, _, err := body.decode("capacity", false, &capacity)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if present {
		if capacity < 1 {
			respondError(c, http.StatusBadRequest, codeBadRequest, "capacity must be at least 1")
			return
		}
		fields["capacity"] = capacity
	}
	if len(fields) == 0 {
		respondServiceError(c, h.log, calendar.Reject(calendar.RejectEmptyUpdate))
		return
	}

	rm, err := h.rooms.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectRoomNotFound))
		return
	}
	respondOK(c, rm)
}

func (h *DirectoryHandler) DeleteRoom(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.rooms.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, notFoundAs(err, calendar.RejectRoomNotFound))
		return
	}
	c.Status(http.StatusNoContent)
}
