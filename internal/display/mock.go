package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// Mock is a test Display that records presented HUDs and plays back
// scripted keys.
type Mock struct {
	mu     sync.Mutex
	huds   []HUD
	sizes  [][2]int
	script map[int]Key
	err    error
	closed bool
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{script: make(map[int]Key)}
}

// KeyAfter makes PollKey return k right after the n-th Present.
func (m *Mock) KeyAfter(n int, k Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script[n] = k
}

// SetError makes Present fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mock) Present(frame gocv.Mat, hud HUD) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.huds = append(m.huds, hud)
	m.sizes = append(m.sizes, [2]int{frame.Cols(), frame.Rows()})
	return nil
}

func (m *Mock) PollKey() Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.huds)
	k, ok := m.script[n]
	if !ok {
		return KeyNone
	}
	delete(m.script, n)
	return k
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Presented returns the HUDs shown so far.
func (m *Mock) Presented() []HUD {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HUD, len(m.huds))
	copy(out, m.huds)
	return out
}

// FrameSize returns the width and height of the n-th presented frame.
func (m *Mock) FrameSize(n int) (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sizes[n][0], m.sizes[n][1]
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
