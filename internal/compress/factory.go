package compress

import "sync"

// Factory hands out one lazily constructed engine singleton per version.
// Reset drops both caches so the next request re-runs construction (and with
// it the cloud credential check).
type Factory struct {
	mu       sync.Mutex
	engines  map[Version]Engine
	newLocal func() Engine
	newCloud func() Engine
}

// NewFactory takes one constructor per engine version.
func NewFactory(newLocal, newCloud func() Engine) *Factory {
	return &Factory{
		engines:  make(map[Version]Engine),
		newLocal: newLocal,
		newCloud: newCloud,
	}
}

// Engine returns the cached engine for the version, constructing it on first
// use. Unrecognized tags resolve to the free engine.
func (f *Factory) Engine(raw string) Engine {
	version := NormalizeVersion(raw)

	f.mu.Lock()
	defer f.mu.Unlock()
	if engine, ok := f.engines[version]; ok {
		return engine
	}

	var engine Engine
	if version == VersionAI {
		engine = f.newCloud()
	} else {
		engine = f.newLocal()
	}
	f.engines[version] = engine
	return engine
}

// Reset clears the cached instances.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engines = make(map[Version]Engine)
}
