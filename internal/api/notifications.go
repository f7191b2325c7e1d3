package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/steamstat/steamstat/internal/contracts"
	"github.com/steamstat/steamstat/internal/errors"
	"github.com/steamstat/steamstat/internal/notify"
)

// NotificationsResponse is the response for GET /notifications.
type NotificationsResponse struct {
	Body struct {
		Notifications []notify.Notification `doc:"Recently dispatched notifications, newest first" json:"notifications"`
	}
}

// NotificationActivateRequest represents the incoming request to activate a notification.
type NotificationActivateRequest struct {
	ID string `doc:"ID of the notification" example:"5f0c9d8e-8c39-4a57-9d7e-3d3b6f2c1a10" path:"id"`
}

// NotificationResponse wraps a single notification.
type NotificationResponse struct {
	Body notify.Notification
}

// RegisterNotificationRoutes sets up the notification endpoints.
func RegisterNotificationRoutes(routerAPI huma.API, inbox contracts.NotificationInbox, apiPathPrefix string) {
	notificationsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Notifications"}

	huma.Register(
		notificationsAPI,
		huma.Operation{
			OperationID: "listNotifications",
			Method:      http.MethodGet,
			Summary:     "List recently dispatched notifications",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*NotificationsResponse, error) {
			return handleNotifications(inbox)
		},
	)

	huma.Register(
		notificationsAPI,
		huma.Operation{
			OperationID: "activateNotification",
			Method:      http.MethodPost,
			Path:        "/{id}/activate",
			Summary:     "Activate a notification, opening its status page",
			Tags:        tags,
		},
		func(ctx context.Context, input *NotificationActivateRequest) (*NotificationResponse, error) {
			return handleNotificationActivate(inbox, input.ID)
		},
	)
}

func handleNotifications(inbox contracts.NotificationInbox) (*NotificationsResponse, error) {
	resp := &NotificationsResponse{}
	resp.Body.Notifications = inbox.List()

	return resp, nil
}

func handleNotificationActivate(inbox contracts.NotificationInbox, rawID string) (*NotificationResponse, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid notification ID '%s'", errors.ErrBadRequest, rawID)
	}

	n, err := inbox.Activate(id)
	if err != nil {
		return nil, err
	}

	return &NotificationResponse{Body: n}, nil
}
