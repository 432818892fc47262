package api

import (
	"errors"
	"net/http"

	reqdto "kilnhall/internal/handler/dto/request"
	resdto "kilnhall/internal/handler/dto/response"
	"kilnhall/internal/handler/httperr"
	"kilnhall/internal/infra"
	"kilnhall/internal/pkg/errs"
	"kilnhall/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	events commands.EventCommands
}

func NewEventHandler(events commands.EventCommands) *EventHandler {
	return &EventHandler{
		events: events,
	}
}

func (h *EventHandler) KilnUnloaded(c *gin.Context) {
	var req reqdto.KilnUnloadedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.events.KilnUnloaded(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.abortWithEventError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resdto.FromFanOutResult(result))
}

func (h *EventHandler) ReservationEvent(c *gin.Context) {
	var req reqdto.ReservationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.events.HandleReservationEvent(c.Request.Context(), req.ToCommand())
	if err != nil {
		h.abortWithEventError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resdto.FromEnqueueResult(result))
}

func (h *EventHandler) abortWithEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrUnknownEventType),
		errors.Is(err, errs.ErrDomainValidation),
		errors.Is(err, errs.ErrInvalidJobKind),
		errors.Is(err, errs.ErrInvalidPayload):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid event", nil)
	case infra.IsKind(err, infra.KindNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
