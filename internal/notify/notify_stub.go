//go:build !linux

package notify

// desktopNotify is a no-op where there is no session bus.
func desktopNotify(note) (uint32, error) {
	return 0, nil
}
