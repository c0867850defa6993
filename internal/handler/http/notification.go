package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/barangay-hris/payroll-backend-go/internal/domain/notification"
	"github.com/barangay-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{notifService: notifService}
}

// getRecipientIDFromContext extracts the authenticated subject from JWT
// claims; notifications are keyed by it.
func getRecipientIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if recipientID, ok := claims["admin_id"].(string); ok {
		return recipientID
	}
	return ""
}

func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	recipientID := getRecipientIDFromContext(r)
	if recipientID == "" {
		response.Unauthorized(w, "Missing access token")
		return
	}

	page := getIntQueryParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := getIntQueryParam(r, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, total, err := h.notifService.List(r.Context(), recipientID, page, pageSize, unreadOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	response.SuccessWithMeta(w, notifications, &response.Meta{
		Page:       page,
		Limit:      pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID := getRecipientIDFromContext(r)
	if recipientID == "" {
		response.Unauthorized(w, "Missing access token")
		return
	}

	count, err := h.notifService.UnreadCount(r.Context(), recipientID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int{"unread_count": count})
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	recipientID := getRecipientIDFromContext(r)
	if recipientID == "" {
		response.Unauthorized(w, "Missing access token")
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.notifService.MarkRead(r.Context(), recipientID, req.IDs); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	recipientID := getRecipientIDFromContext(r)
	if recipientID == "" {
		response.Unauthorized(w, "Missing access token")
		return
	}

	if err := h.notifService.MarkAllRead(r.Context(), recipientID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}
