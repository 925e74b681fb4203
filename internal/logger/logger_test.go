package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture routes the diagnostics channel into a buffer for the test and
// restores the defaults afterwards.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	buf := capture(t)

	Debug("expandindo %q", "html")
	Info("indexados %d arquivos", 3)
	Warn("busca degradada")
	Section("Busca")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] expandindo \"html\"\n")
	assert.Contains(t, out, "[INFO] indexados 3 arquivos\n")
	assert.Contains(t, out, "[WARN] busca degradada\n")
	assert.Contains(t, out, "\n=== Busca ===\n")
}

func TestQuietByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("nada")
	Info("nada")
	Warn("nada")
	Section("nada")

	assert.Zero(t, buf.Len())
}

func TestConcurrentUse(t *testing.T) {
	capture(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("worker %d", n)
			IsVerbose()
		}(i)
	}
	wg.Wait()
}
