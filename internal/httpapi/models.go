package httpapi

import (
	"net/http"
	"strings"
	"time"

	"memoryd/pkg/types"
)

// listModels godoc
// @Summary  List model files in the models directory
// @Tags     models
// @Produce  json
// @Success  200  {object}  types.ModelsResponse
// @Failure  500  {object}  types.ErrorResponse
// @Router   /models [get]
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.ListModels()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if models == nil {
		models = []types.Model{}
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
}

// loadModel godoc
// @Summary  Load a model, replacing the current one
// @Tags     models
// @Accept   json
// @Produce  json
// @Param    body  body      types.LoadRequest  true  "model to load"
// @Success  200   {object}  types.StatusResponse
// @Failure  404   {object}  types.ErrorResponse
// @Failure  429   {object}  types.ErrorResponse
// @Router   /models/load [post]
func (h *handlers) loadModel(w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ref := strings.TrimSpace(req.Path)
	if ref == "" {
		ref = strings.TrimSpace(req.Model)
	}
	if ref == "" {
		writeJSONError(w, http.StatusBadRequest, "path or model is required")
		return
	}
	start := time.Now()
	if err := h.svc.LoadModel(r.Context(), ref, req.ContextLength); err != nil {
		writeError(w, r, err)
		return
	}
	logger().Info().Str("model", ref).Dur("dur", time.Since(start)).Msg("model loaded")
	writeJSON(w, http.StatusOK, h.statusResponse())
}

// @Summary  Unload the current model
// @Tags     models
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /models/unload [post]
func (h *handlers) unloadModel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.UnloadModel(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.statusResponse())
}

// @Summary  Lifecycle and generation status
// @Tags     models
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statusResponse())
}

// @Summary  GPU availability
// @Tags     models
// @Produce  json
// @Success  200  {object}  types.GPUInfoResponse
// @Router   /gpu [get]
func (h *handlers) gpu(w http.ResponseWriter, r *http.Request) {
	g := h.svc.GPUInfo()
	writeJSON(w, http.StatusOK, types.GPUInfoResponse{Available: g.Available, Backend: g.Backend, Runtime: g.Runtime})
}

func (h *handlers) statusResponse() types.StatusResponse {
	st := h.svc.Status()
	resp := types.StatusResponse{
		State:          "unloaded",
		Capability:     string(st.Capability),
		Generating:     st.Generating,
		LastError:      st.LastError,
		UptimeSeconds:  int64(st.Uptime.Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		LoadsTotal:     st.LoadsTotal,
	}
	if st.Model.Loaded {
		resp.State = "loaded"
		resp.Path = st.Model.Path
		resp.ContextLength = st.Model.ContextTokens
		resp.GPULayers = st.Model.Placement.GPULayers
		resp.LoadedAtUnix = st.Model.LoadedAt.Unix()
	}
	return resp
}
