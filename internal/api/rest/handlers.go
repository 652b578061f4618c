package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/birka/schema/internal/metrics"
	"github.com/birka/schema/internal/publisher"
	"github.com/birka/schema/internal/service"
	"github.com/birka/schema/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 64 << 10

// ScheduleBuilder assembles the schedule served at /schedule
type ScheduleBuilder interface {
	Build(ctx context.Context) (*service.Schedule, error)
}

// HealthChecker is an optional dependency reported by /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	schedule    ScheduleBuilder
	annotations store.AnnotationStore
	publisher   publisher.Publisher
	cache       HealthChecker
	service     string
	version     string
	logger      logrus.FieldLogger
}

// HandlerOption customizes a Handler
type HandlerOption func(*Handler)

// WithPublisher notifies pub after every successful toggle
func WithPublisher(pub publisher.Publisher) HandlerOption {
	return func(h *Handler) { h.publisher = pub }
}

// WithCache reports the cache connection on /health
func WithCache(c HealthChecker) HandlerOption {
	return func(h *Handler) { h.cache = c }
}

// WithVersion sets the service name and version reported on /health
func WithVersion(name, version string) HandlerOption {
	return func(h *Handler) {
		h.service = name
		h.version = version
	}
}

// NewHandler creates a new handler
func NewHandler(schedule ScheduleBuilder, annotations store.AnnotationStore, logger logrus.FieldLogger, opts ...HandlerOption) *Handler {
	h := &Handler{
		schedule:    schedule,
		annotations: annotations,
		publisher:   publisher.Nop{},
		service:     "schema",
		logger:      logger.WithField("component", "rest"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	}
	status := http.StatusOK
	if h.cache != nil {
		resp["cache"] = "ok"
		if err := h.cache.HealthCheck(r.Context()); err != nil {
			// Schedules still build without the cache
			resp["cache"] = "unavailable"
			resp["status"] = "degraded"
		}
	}
	respondJSON(w, status, resp)
}

// GetSchedule returns the windowed, annotated schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedule.Build(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build schedule")
		respondError(w, http.StatusInternalServerError, "Failed to build schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, sched)
}

// GetAnnotations returns every priority and tag marker
func (h *Handler) GetAnnotations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.annotations.Snapshot())
}

type priorityResponse struct {
	OK       bool     `json:"ok"`
	EventIDs []string `json:"eventIds"`
}

type tagResponse struct {
	OK        bool     `json:"ok"`
	TagsForID []string `json:"tagsForId"`
}

// TogglePriority flips the priority marker of body.id
func (h *Handler) TogglePriority(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONBody(w, r)
	if !ok {
		h.countToggle(store.ChangePriority, "rejected")
		respondRejected(w)
		return
	}
	id := gjson.GetBytes(body, "id").String()

	ids, err := h.annotations.TogglePriority(id)
	if errors.Is(err, store.ErrInvalidID) {
		h.countToggle(store.ChangePriority, "rejected")
		respondRejected(w)
		return
	}
	if err != nil {
		h.countToggle(store.ChangePriority, "error")
		h.logger.WithError(err).WithField("id", id).Error("Failed to toggle priority")
		respondError(w, http.StatusInternalServerError, "Failed to save priorities", err)
		return
	}
	h.countToggle(store.ChangePriority, "ok")

	snap := h.annotations.Snapshot()
	h.publish(r.Context(), store.Change{
		Kind:     store.ChangePriority,
		ID:       id,
		Priority: snap.IsPriority(id),
		Tags:     snap.TagsFor(id),
	})

	respondJSON(w, http.StatusOK, priorityResponse{OK: true, EventIDs: ids})
}

// ToggleTag flips body.tag on body.id
func (h *Handler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONBody(w, r)
	if !ok {
		h.countToggle(store.ChangeTag, "rejected")
		respondRejected(w)
		return
	}
	id := gjson.GetBytes(body, "id").String()
	tag := gjson.GetBytes(body, "tag").String()

	tags, err := h.annotations.ToggleTag(id, tag)
	if errors.Is(err, store.ErrInvalidID) || errors.Is(err, store.ErrInvalidTag) {
		h.countToggle(store.ChangeTag, "rejected")
		respondRejected(w)
		return
	}
	if err != nil {
		h.countToggle(store.ChangeTag, "error")
		h.logger.WithError(err).WithFields(logrus.Fields{"id": id, "tag": tag}).Error("Failed to toggle tag")
		respondError(w, http.StatusInternalServerError, "Failed to save tags", err)
		return
	}
	h.countToggle(store.ChangeTag, "ok")

	h.publish(r.Context(), store.Change{
		Kind:     store.ChangeTag,
		ID:       id,
		Tag:      tag,
		Priority: h.annotations.Snapshot().IsPriority(id),
		Tags:     tags,
	})

	respondJSON(w, http.StatusOK, tagResponse{OK: true, TagsForID: tags})
}

func (h *Handler) publish(ctx context.Context, change store.Change) {
	if err := h.publisher.PublishAnnotationChange(ctx, change); err != nil {
		h.logger.WithError(err).WithField("id", change.ID).Warn("Failed to publish annotation change")
	}
}

func (h *Handler) countToggle(kind, result string) {
	metrics.AnnotationToggles.WithLabelValues(kind, result).Inc()
}

// readJSONBody returns the request body when it is a JSON object
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !gjson.ValidBytes(body) {
		return nil, false
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, false
	}
	return body, true
}

// respondRejected answers a toggle with missing or invalid input
func respondRejected(w http.ResponseWriter) {
	respondJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
