package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
)

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := s.uc.Notification.List(r.Context(), actor, unreadOnly, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toNotificationResponses(list))
}

func (s *Server) markReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	id := model.NotificationID(chi.URLParam(r, "notificationID"))
	n, err := s.uc.Notification.MarkRead(r.Context(), actor, id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toNotificationResponses([]*model.Notification{n})[0])
}

// listActivitiesHandler returns the activities the caller performed
func (s *Server) listActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	list, err := s.uc.Activity.ListMine(r.Context(), actor, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toActivityResponses(list))
}
