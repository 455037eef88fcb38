package contacts

import (
	"context"
	"net/http"

	"github.com/workstack/org-messaging/internal/auth"
	"github.com/workstack/org-messaging/internal/transport"
	"github.com/workstack/org-messaging/pkg/logger"
)

type ServiceAPI interface {
	ListContacts(ctx context.Context, employeeID int64) (*ContactList, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	emp, ok := auth.EmployeeFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.Service.ListContacts(r.Context(), emp.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, list)
}
