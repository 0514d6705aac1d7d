//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.freedesktop.Notifications"
	busPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	expireMillis = int32(8000)
)

// desktopNotify posts n on the session bus and returns the id the server
// assigned, so the next answer can replace it.
func desktopNotify(n note) (uint32, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, err
	}
	urgency := byte(1)
	if n.Urgent {
		urgency = 2
	}
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency)}

	var id uint32
	err = conn.Object(busName, busPath).
		Call(busName+".Notify", 0, appName, n.Replaces, "accessories-calculator", n.Title, n.Body, []string{}, hints, expireMillis).
		Store(&id)
	return id, err
}
