package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-tracker/pkg/accesscontrol"
	"github.com/jakechorley/volunteer-tracker/pkg/apperrors"
	"github.com/jakechorley/volunteer-tracker/pkg/core/model"
	"github.com/jakechorley/volunteer-tracker/pkg/core/services"
)

// Messages returned by the dispatch layer
const (
	MsgInvalidAction = "Invalid action"
	MsgSaved         = "Data saved successfully"
	MsgUserAdded     = "User added successfully."
	MsgUserDeleted   = "User deleted successfully."
	MsgRoleUpdated   = "User role updated."
)

// maxBodyBytes bounds a POST submission
const maxBodyBytes = 1 << 20

// actionFunc handles one GET action. A json.RawMessage result is written verbatim.
type actionFunc func(ctx context.Context, params url.Values) (interface{}, error)

// Handler dispatches the /exec actions to the services
type Handler struct {
	data    *services.VolunteerDataService
	access  *accesscontrol.Service
	logger  *zap.Logger
	actions map[string]actionFunc
}

// NewHandler wires the action table
func NewHandler(data *services.VolunteerDataService, access *accesscontrol.Service, logger *zap.Logger) *Handler {
	h := &Handler{
		data:   data,
		access: access,
		logger: logger,
	}
	h.actions = map[string]actionFunc{
		"getAllData":          h.getAllData,
		"getData":             h.getData,
		"getSupervisionData":  h.getSupervisionData,
		"authenticate":        h.authenticate,
		"authenticateByEmail": h.authenticateByEmail,
		"getUsers":            h.getUsers,
		"addUser":             h.addUser,
		"deleteUser":          h.deleteUser,
		"updateUserRole":      h.updateUserRole,
		"ping":                h.ping,
	}
	return h
}

// Exec handles GET /exec?action=...
func (h *Handler) Exec(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	action := params.Get("action")

	handle, ok := h.actions[action]
	if !ok {
		h.logger.Debug("Unknown action", zap.String("action", action))
		writeJSON(w, StatusResponse{Status: statusError, Message: MsgInvalidAction})
		return
	}

	result, err := handle(r.Context(), params)
	if err != nil {
		h.writeError(w, r, action, err)
		return
	}
	writeJSON(w, result)
}

// Submit handles POST /exec with an attendance or supervision body
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmissionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, "submit", apperrors.New(apperrors.ErrInvalidArgument,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	var err error
	if req.Type == "supervision" {
		err = h.data.SaveSupervision(r.Context(), req.supervision())
	} else {
		err = h.data.SaveAttendance(r.Context(), req.attendance())
	}
	if err != nil {
		h.writeError(w, r, "submit", err)
		return
	}

	writeJSON(w, StatusResponse{Status: statusSuccess, Message: MsgSaved})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{Status: statusOK})
}

func (h *Handler) getAllData(ctx context.Context, params url.Values) (interface{}, error) {
	payload, err := h.data.GetAllData(ctx, params.Get("volunteer"))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

func (h *Handler) getData(ctx context.Context, params url.Values) (interface{}, error) {
	volunteer := params.Get("volunteer")
	if strings.TrimSpace(volunteer) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidArgument, MsgInvalidAction)
	}
	records, err := h.data.GetAttendance(ctx, volunteer)
	if err != nil {
		return nil, err
	}
	return DataResponse{Status: statusSuccess, Data: records}, nil
}

func (h *Handler) getSupervisionData(ctx context.Context, params url.Values) (interface{}, error) {
	volunteer := params.Get("volunteer")
	if strings.TrimSpace(volunteer) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidArgument, MsgInvalidAction)
	}
	records, err := h.data.GetSupervision(ctx, volunteer)
	if err != nil {
		return nil, err
	}
	return DataResponse{Status: statusSuccess, Data: records}, nil
}

func (h *Handler) authenticate(ctx context.Context, params url.Values) (interface{}, error) {
	profile, err := h.access.Authenticate(ctx, params.Get("idToken"))
	if err != nil {
		return nil, err
	}
	return UserResponse{Status: statusSuccess, User: profile}, nil
}

func (h *Handler) authenticateByEmail(ctx context.Context, params url.Values) (interface{}, error) {
	profile, err := h.access.AuthenticateByEmail(ctx, params.Get("email"))
	if err != nil {
		return nil, err
	}
	return UserResponse{Status: statusSuccess, User: profile}, nil
}

func (h *Handler) getUsers(ctx context.Context, params url.Values) (interface{}, error) {
	requester, err := h.access.Requester(ctx, params.Get("token"), params.Get("email"))
	if err != nil {
		return nil, err
	}
	users, err := h.access.List(ctx, requester)
	if err != nil {
		return nil, err
	}
	return UsersResponse{Status: statusSuccess, Users: users}, nil
}

func (h *Handler) addUser(ctx context.Context, params url.Values) (interface{}, error) {
	requester, err := h.access.Requester(ctx, params.Get("token"), "")
	if err != nil {
		return nil, err
	}

	role := model.Role(params.Get("role"))
	if role == "" {
		role = model.RoleVolunteer
	}

	err = h.access.Create(ctx, requester, params.Get("email"), params.Get("name"), role, params.Get("volunteerName"))
	if err != nil {
		return nil, err
	}
	return StatusResponse{Status: statusSuccess, Message: MsgUserAdded}, nil
}

func (h *Handler) deleteUser(ctx context.Context, params url.Values) (interface{}, error) {
	requester, err := h.access.Requester(ctx, params.Get("token"), "")
	if err != nil {
		return nil, err
	}
	if err := h.access.Delete(ctx, requester, params.Get("email")); err != nil {
		return nil, err
	}
	return StatusResponse{Status: statusSuccess, Message: MsgUserDeleted}, nil
}

func (h *Handler) updateUserRole(ctx context.Context, params url.Values) (interface{}, error) {
	requester, err := h.access.Requester(ctx, params.Get("token"), "")
	if err != nil {
		return nil, err
	}
	if err := h.access.UpdateRole(ctx, requester, params.Get("email"), model.Role(params.Get("role"))); err != nil {
		return nil, err
	}
	return StatusResponse{Status: statusSuccess, Message: MsgRoleUpdated}, nil
}

func (h *Handler) ping(ctx context.Context, params url.Values) (interface{}, error) {
	return StatusResponse{Status: statusOK}, nil
}

// writeError reports err in-band. Internal failures are logged at error level.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}

	if errors.Is(apperrors.KindOf(err), apperrors.ErrInternal) {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Info("Request rejected", fields...)
	}

	writeJSON(w, StatusResponse{Status: statusError, Message: apperrors.Message(err)})
}

// writeJSON always replies 200; failures are reported through the status field
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if raw, ok := data.(json.RawMessage); ok {
		w.Write(raw)
		return
	}
	json.NewEncoder(w).Encode(data)
}
