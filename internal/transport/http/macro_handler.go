package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "ordermacro/internal/errors"
	"ordermacro/internal/middleware"
	"ordermacro/internal/operations"
	"ordermacro/internal/services"
	api "ordermacro/pkg/contracts/api/v1"
	"ordermacro/pkg/contracts/domain"
)

// multipartMemory is how much of an upload is buffered before spilling to disk
const multipartMemory = 8 << 20

// MacroHandler handles macro runs and run lookups
type MacroHandler struct {
	service      MacroRunner
	uploads      UploadStore
	validator    *middleware.Validator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewMacroHandler creates a new macro handler
func NewMacroHandler(service MacroRunner, uploads UploadStore, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *MacroHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MacroHandler{
		service:      service,
		uploads:      uploads,
		validator:    middleware.NewValidator(),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "macros")),
	}
}

// Routes mounts the macro and run endpoints
func (h *MacroHandler) Routes(r chi.Router) {
	r.Get("/macros/channels", h.Channels)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
		Post("/macros/{mode}/{channel}", h.Run)
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)
}

// runForm is the validated shape of a run request
type runForm struct {
	Mode    string `json:"mode" validate:"required,macro_mode"`
	Channel string `json:"channel" validate:"required,macro_channel"`
	File    string `json:"file" validate:"required,order_file"`
	Sheet   string `json:"sheet" validate:"max=31"`
}

// Run handles POST /api/v1/macros/{mode}/{channel}
func (h *MacroHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apperrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.ErrMissingFile)
		return
	}
	defer file.Close()

	form := runForm{
		Mode:    chi.URLParam(r, "mode"),
		Channel: chi.URLParam(r, "channel"),
		File:    header.Filename,
		Sheet:   r.FormValue("sheet"),
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	mode, _ := domain.ParseMode(form.Mode)
	channel, _ := domain.ParseChannel(form.Channel)
	exportCSV, _ := strconv.ParseBool(r.FormValue("csv"))

	input, err := h.uploads.SaveUpload(header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer func() {
		if err := h.uploads.Remove(input); err != nil {
			h.logger.WarnContext(ctx, "upload_cleanup_failed", slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "macro_run_requested",
		slog.String("mode", string(mode)),
		slog.String("channel", string(channel)),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Run(ctx, services.RunRequest{
		Mode:      mode,
		Channel:   channel,
		InputPath: input,
		Sheet:     form.Sheet,
		ExportCSV: exportCSV,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// Channels handles GET /api/v1/macros/channels
func (h *MacroHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels := make([]api.ChannelInfo, 0, len(domain.AllChannels()))
	for _, c := range domain.AllChannels() {
		channels = append(channels, api.ChannelInfo{ID: c, DisplayName: c.DisplayName()})
	}
	render.JSON(w, r, api.ChannelListResponse{
		Modes:    domain.AllModes(),
		Channels: channels,
		Macros:   h.service.Macros(),
	})
}

// GetRun handles GET /api/v1/runs/{id}
func (h *MacroHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.service.GetRun(id)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewWithDetails(
			http.StatusNotFound, apperrors.ErrRunNotFound.ErrorCode, apperrors.ErrRunNotFound.Message, id))
		return
	}
	render.JSON(w, r, run)
}

// ListRuns handles GET /api/v1/runs?mode=&channel=&status=&limit=
func (h *MacroHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := operations.RunFilter{Status: q.Get("status")}

	if v := q.Get("mode"); v != "" {
		mode, err := domain.ParseMode(v)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("mode", err.Error()))
			return
		}
		filter.Mode = mode
	}
	if v := q.Get("channel"); v != "" {
		channel, err := domain.ParseChannel(v)
		if err != nil {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("channel", err.Error()))
			return
		}
		filter.Channel = channel
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("limit", "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	runs := h.service.ListRuns(filter)
	if runs == nil {
		runs = []*domain.RunResult{}
	}
	render.JSON(w, r, api.RunListResponse{Runs: runs, Count: len(runs)})
}
