package binding

import (
	_ "embed"
	"sync"
)

//go:embed wheels.yaml
var wheelsManifest []byte

var (
	wheels     *Module
	wheelsOnce sync.Once
)

// Wheels returns the declared wheel module. The embedded manifest is parsed
// once; a malformed manifest is a build defect and panics.
func Wheels() *Module {
	wheelsOnce.Do(func() {
		m, err := LoadManifest(wheelsManifest)
		if err != nil {
			panic(err)
		}
		wheels = m
	})
	return wheels
}

// WheelsManifest returns the embedded manifest source.
func WheelsManifest() []byte {
	out := make([]byte, len(wheelsManifest))
	copy(out, wheelsManifest)
	return out
}
