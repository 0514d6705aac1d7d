//go:build unix

package speech

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A wrapper script whose children keep speaking must not hold up Stop.
func TestStopKillsWrapperChildren(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "speak")
	started := script + ".started"
	body := "#!/bin/sh\ntouch \"$0.started\"\nsleep 5 | cat\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	a := NewAnnouncer(NewCommandEngine(script), DefaultVoice())
	a.Announce("x=5")
	require.Eventually(t, func() bool {
		_, err := os.Stat(started)
		return err == nil
	}, waitFor, 5*time.Millisecond)
	require.Equal(t, Speaking, a.State())

	begin := time.Now()
	a.Stop()
	assert.Less(t, time.Since(begin), time.Second)
	assert.Equal(t, Silent, a.State())
}
