package api

import (
	"errors"
	"net/http"
	"strconv"

	resdto "kilnhall/internal/handler/dto/response"
	"kilnhall/internal/handler/httperr"
	"kilnhall/internal/usecase/commands"
	"kilnhall/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes the manual run-now triggers and the operational read
// surface. All routes require staff role or above.
type AdminHandler struct {
	queue         commands.QueueCommands
	storagePolicy commands.StoragePolicyCommands
	reads         queries.NotificationQueries
}

func NewAdminHandler(
	queue commands.QueueCommands,
	storagePolicy commands.StoragePolicyCommands,
	reads queries.NotificationQueries,
) *AdminHandler {
	return &AdminHandler{
		queue:         queue,
		storagePolicy: storagePolicy,
		reads:         reads,
	}
}

func (h *AdminHandler) RunNotifications(c *gin.Context) {
	stats, err := h.queue.ProcessDueJobs(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromProcessStats(stats))
}

func (h *AdminHandler) RunStoragePolicy(c *gin.Context) {
	stats, err := h.storagePolicy.Sweep(c.Request.Context())
	if err != nil {
		if errors.Is(err, commands.ErrSweepAlreadyRunning) {
			httperr.AbortWithError(c, http.StatusConflict, err, "Sweep already running", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSweepStats(stats))
}

func (h *AdminHandler) ListJobs(c *gin.Context) {
	status := c.DefaultQuery("status", "queued")

	jobs, err := h.reads.ListJobsByStatus(c.Request.Context(), status, h.limitParam(c))
	if err != nil {
		if errors.Is(err, queries.ErrUnknownJobStatus) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Unknown job status", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *AdminHandler) ListDeadLetters(c *gin.Context) {
	letters, err := h.reads.ListDeadLetters(c.Request.Context(), h.limitParam(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deadLetters": letters})
}

func (h *AdminHandler) GetReservationAudit(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID", nil)
		return
	}

	entries, err := h.reads.ListReservationAudit(c.Request.Context(), reservationID, h.limitParam(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit": entries})
}

func (h *AdminHandler) limitParam(c *gin.Context) int32 {
	raw := c.DefaultQuery("limit", "50")
	limit, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 50
	}
	return int32(limit)
}
