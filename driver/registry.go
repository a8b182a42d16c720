package driver

import "sync"

// MaxDrivers is the fixed registry capacity; overflow is a build-time
// misconfiguration per section 4.2.
const MaxDrivers = 32

type instance struct {
	driver Driver
	device *DeviceInfo
	active bool
	irq    *uint32
}

// Registry is the fixed-capacity (32) driver registry owning every bound
// Driver instance, grounded on original_source/driver.rs's
// heapless::Vec<DriverInstance, MAX_DRIVERS>.
type Registry struct {
	mu          sync.Mutex
	instances   []*instance
	initialized bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make([]*instance, 0, MaxDrivers)}
}

// Init marks the registry ready; idempotent.
func (r *Registry) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initialized = true
	return nil
}

// Register adds an unbound driver to the registry.
func (r *Registry) Register(d Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.instances) >= MaxDrivers {
		return ErrRegistryFull
	}

	r.instances = append(r.instances, &instance{driver: d})
	return nil
}

// Discover runs the bind algorithm of section 4.2: for each candidate
// device, linearly probe the registry until a driver accepts, then
// Init+Start it; on either failure the device is marked unbound and
// discovery proceeds to the next device. It returns the count of devices
// successfully bound.
func (r *Registry) Discover(devices []DeviceInfo) (bound int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dev := range devices {
		for _, inst := range r.instances {
			if inst.active {
				continue
			}

			if !inst.driver.Probe(dev) {
				continue
			}

			if err := inst.driver.Init(dev); err != nil {
				break
			}

			if err := inst.driver.Start(); err != nil {
				break
			}

			d := dev
			inst.device = &d
			inst.active = true
			inst.irq = dev.IRQ
			bound++
			break
		}
	}

	return bound
}

// HandleIRQ performs the IRQ dispatch of section 4.2: a linear scan over
// the active driver set (at most MaxDrivers entries) invoking the first
// match's HandleIRQ.
func (r *Registry) HandleIRQ(irq uint32) error {
	r.mu.Lock()
	var target Driver
	for _, inst := range r.instances {
		if inst.active && inst.irq != nil && *inst.irq == irq {
			target = inst.driver
			break
		}
	}
	r.mu.Unlock()

	if target == nil {
		return ErrNoDriver
	}

	return target.HandleIRQ()
}

// Active returns the currently bound, active drivers.
func (r *Registry) Active() []Driver {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Driver, 0, len(r.instances))
	for _, inst := range r.instances {
		if inst.active {
			out = append(out, inst.driver)
		}
	}
	return out
}

// Len reports how many drivers are registered (bound or not).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}
