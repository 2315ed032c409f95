package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appnetwork "github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/application/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/domain/network"
	"github.com/digitallenteranusa-bot/javaindonusa-sub001/internal/interfaces/http/dto"
)

// RouterHandler exposes router fleet management endpoints
type RouterHandler struct {
	BaseHandler
	svc     *appnetwork.Service
	routers network.RouterRepository
}

// NewRouterHandler creates a RouterHandler
func NewRouterHandler(svc *appnetwork.Service, routers network.RouterRepository, logger *zap.Logger) *RouterHandler {
	return &RouterHandler{
		BaseHandler: NewBaseHandler(logger),
		svc:         svc,
		routers:     routers,
	}
}

// RegisterRouterRequest is the payload for adding a router to the fleet
type RegisterRouterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Host     string `json:"host" binding:"required,max=255"`
	Port     int    `json:"port" binding:"omitempty,min=1,max=65535"`
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=255"`
	Location string `json:"location" binding:"max=200"`
}

// UpdateRouterRequest changes connection parameters. An empty password keeps
// the stored one.
type UpdateRouterRequest struct {
	Host     string `json:"host" binding:"required,max=255"`
	Port     int    `json:"port" binding:"required,min=1,max=65535"`
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"max=255"`
	Location string `json:"location" binding:"max=200"`
}

// RouterResponse is the device representation returned by the API.
// Credentials never leave the server.
type RouterResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Host         string     `json:"host"`
	Port         int        `json:"port"`
	Location     string     `json:"location,omitempty"`
	Status       string     `json:"status"`
	Identity     string     `json:"identity,omitempty"`
	OSVersion    string     `json:"os_version,omitempty"`
	BoardName    string     `json:"board_name,omitempty"`
	Model        string     `json:"model,omitempty"`
	Uptime       string     `json:"uptime,omitempty"`
	CPULoad      int        `json:"cpu_load"`
	MemoryUsage  int        `json:"memory_usage"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	LastCheckAt  *time.Time `json:"last_check_at,omitempty"`
	FailureCount int        `json:"failure_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toRouterResponse(r *network.Router) RouterResponse {
	return RouterResponse{
		ID:           r.ID,
		Name:         r.Name,
		Host:         r.Host,
		Port:         r.Port,
		Location:     r.Location,
		Status:       string(r.Status),
		Identity:     r.Identity,
		OSVersion:    r.OSVersion,
		BoardName:    r.BoardName,
		Model:        r.Model,
		Uptime:       r.Uptime,
		CPULoad:      r.CPULoad,
		MemoryUsage:  r.MemoryUsage,
		LastSeenAt:   r.LastSeenAt,
		LastCheckAt:  r.LastCheckAt,
		FailureCount: r.FailureCount,
		CreatedAt:    r.CreatedAt,
	}
}

func toRouterResponses(routers []network.Router) []RouterResponse {
	out := make([]RouterResponse, len(routers))
	for i := range routers {
		out[i] = toRouterResponse(&routers[i])
	}
	return out
}

// Register adds a router to the fleet
// POST /api/v1/routers
func (h *RouterHandler) Register(c *gin.Context) {
	var req RegisterRouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	port := req.Port
	if port == 0 {
		port = 8728
	}

	router, err := h.svc.Register(c.Request.Context(), req.Name, req.Host, port, req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Location != "" {
		router.Location = req.Location
		if err := h.routers.Save(c.Request.Context(), router); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	h.Created(c, toRouterResponse(router))
}

// List returns the router fleet
// GET /api/v1/routers
func (h *RouterHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err)
		return
	}
	filter := req.ToFilter()
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	routers, err := h.routers.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.routers.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toRouterResponses(routers), filter.Page, filter.PageSize, total)
}

// Get returns one router
// GET /api/v1/routers/:id
func (h *RouterHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	router, err := h.routers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRouterResponse(router))
}

// Update changes a router's connection parameters
// PUT /api/v1/routers/:id
func (h *RouterHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req UpdateRouterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	router, err := h.routers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := router.UpdateConnection(req.Host, req.Port, req.Username, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	if req.Location != "" {
		router.Location = req.Location
	}

	if err := h.routers.Save(c.Request.Context(), router); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRouterResponse(router))
}

// Refresh health-checks one router now
// POST /api/v1/routers/:id/refresh
func (h *RouterHandler) Refresh(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	router, err := h.svc.Refresh(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRouterResponse(router))
}

// RefreshAll health-checks the whole fleet now
// POST /api/v1/routers/refresh
func (h *RouterHandler) RefreshAll(c *gin.Context) {
	result, err := h.svc.RefreshAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// EnterMaintenance takes a router out of sweep rotation
// POST /api/v1/routers/:id/maintenance
func (h *RouterHandler) EnterMaintenance(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	router, err := h.routers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := router.EnterMaintenance(); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.routers.Save(c.Request.Context(), router); err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("router entered maintenance",
		zap.String("router", router.Name),
		zap.String("by", actor(c)))

	h.Success(c, toRouterResponse(router))
}

// ExitMaintenance returns a router to normal rotation
// DELETE /api/v1/routers/:id/maintenance
func (h *RouterHandler) ExitMaintenance(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	router, err := h.routers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := router.ExitMaintenance(); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.routers.Save(c.Request.Context(), router); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRouterResponse(router))
}

// Delete removes a router from the fleet
// DELETE /api/v1/routers/:id
func (h *RouterHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.routers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
