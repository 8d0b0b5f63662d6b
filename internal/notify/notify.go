// Package notify raises desktop notifications for windows that demand
// attention while the taskbar is hidden or ignored.
package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/ItsNotGoodName/x-taskbar/internal/bus"
	"github.com/ItsNotGoodName/x-taskbar/internal/panel"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"

	// expireTimeout in milliseconds; -1 leaves it to the notification server.
	expireTimeout = int32(-1)
)

type Notifier struct {
	conn *dbus.Conn
}

func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Notifier{conn: conn}, nil
}

func (n *Notifier) Close() error {
	return n.conn.Close()
}

// Register subscribes the notifier to task urgency events.
func (n *Notifier) Register() *Notifier {
	bus.Subscribe("notify.Notifier", func(ctx context.Context, event panel.TaskEvent) error {
		if event.Kind != panel.EventUrgency || !event.On {
			return nil
		}
		return n.send(event.Task.Title)
	})
	return n
}

func (n *Notifier) send(title string) error {
	obj := n.conn.Object(notifyDest, notifyPath)
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints,
	// expire_timeout)
	call := obj.Call(notifyMethod, 0,
		"x-taskbar",
		uint32(0),
		"",
		"Window demands attention",
		title,
		[]string{},
		map[string]dbus.Variant{},
		expireTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("notify call: %w", call.Err)
	}
	return nil
}
