package module

import "sync"

var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register records a module's exports under name, the last call wins
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs looks up name and asserts its exports to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := reg[name].(T)
	return v, ok
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(reg)
}
