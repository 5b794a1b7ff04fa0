package handler

import (
	"context"

	"github.com/vigil/demo-requests/internal/manager"
)

// NotificationMethod is the MCP notification sent for every manager event.
const NotificationMethod = "notifications/demo_request"

// Notifier is satisfied by *server.MCPServer.
type Notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// ForwardEvents relays broker events to MCP clients until ctx is done.
func ForwardEvents(ctx context.Context, n Notifier, b *manager.Broker) {
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			n.SendNotificationToAllClients(NotificationMethod, map[string]any{
				"type":    ev.Type,
				"request": ev.Request,
			})
		}
	}
}
