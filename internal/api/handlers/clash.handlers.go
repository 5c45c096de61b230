package routes

import (
	"context"
	"errors"
	"log"
	"net/http"

	"buildingclash/internal/model"
	"buildingclash/internal/service/clash"
	"buildingclash/internal/service/task"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidJSON = "Invalid JSON input"
	msgInvalid     = "Invalid input"
	msgProcessing  = "Processing, please try again later"
	msgNotFound    = "Task not found"
)

// TaskService is the part of the dispatcher the handlers use
type TaskService interface {
	Submit(ctx context.Context, body []byte) (task.Outcome, error)
	Lookup(ctx context.Context, taskID string) (task.Outcome, error)
}

// SetupClashHandlers registers the submit and result endpoints
func SetupClashHandlers(router *gin.RouterGroup, tasks TaskService) {
	h := &clashHandlers{tasks: tasks}

	router.POST("/", h.Submit)
	router.POST("/clashes", h.Submit)
	router.GET("/clashes/:task_id", h.Result)
}

type clashHandlers struct {
	tasks TaskService
}

// Submit answers with the finished report, or 202 and a task id to retry with
func (h *clashHandlers) Submit(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return
	}

	outcome, err := h.tasks.Submit(c.Request.Context(), body)
	if err != nil {
		writeSubmitError(c, err)
		return
	}

	switch outcome.Status {
	case model.TaskStatusComplete:
		log.Printf("[%s] Task %s served from cache", requestID(c), outcome.TaskID)
		c.JSON(http.StatusOK, outcome.Result)
	default:
		log.Printf("[%s] Task %s still processing", requestID(c), outcome.TaskID)
		c.JSON(http.StatusAccepted, gin.H{
			"message": msgProcessing,
			"task_id": outcome.TaskID,
		})
	}
}

// Result reads the cache directly and never enqueues
func (h *clashHandlers) Result(c *gin.Context) {
	taskID := c.Param("task_id")

	outcome, err := h.tasks.Lookup(c.Request.Context(), taskID)
	if err != nil {
		log.Printf("[%s] Lookup of task %s failed: %v", requestID(c), taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if outcome.Status != model.TaskStatusComplete {
		c.JSON(http.StatusNotFound, gin.H{
			"message": msgNotFound,
			"task_id": taskID,
		})
		return
	}
	c.JSON(http.StatusOK, outcome.Result)
}

func writeSubmitError(c *gin.Context, err error) {
	var verr *clash.ValidationError
	switch {
	case errors.Is(err, task.ErrMalformedInput), errors.Is(err, clash.ErrInvalidJSON):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalid, "fields": verr.Fields})
	default:
		log.Printf("[%s] Submit failed: %v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
