package driver

import "sync"

// PWMChannelState is one channel's persisted configuration, kept across
// enable/disable so the round-trip law of section 8 holds: enable then
// disable then enable restores the prior frequency (and duty) setting.
type PWMChannelState struct {
	Enabled   bool
	Frequency uint32
	DutyPct   uint8
}

type pwmKey struct {
	ctrl, ch uint8
}

// PWMController is a software model of a bank of PWM controllers/channels,
// grounded on original_source's pwm_helpers.rs shell command surface
// (enable/disable/freq/duty/pulse) and the teacher's per-peripheral driver
// style of small owned state behind a mutex.
type PWMController struct {
	mu          sync.Mutex
	initialized bool
	channels    map[pwmKey]*PWMChannelState
}

// NewPWMController creates an uninitialized controller.
func NewPWMController() *PWMController {
	return &PWMController{channels: make(map[pwmKey]*PWMChannelState)}
}

// Init marks the controller ready.
func (p *PWMController) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = true
	return nil
}

// IsInitialized reports whether Init has run.
func (p *PWMController) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

func (p *PWMController) stateLocked(ctrl, ch uint8) *PWMChannelState {
	k := pwmKey{ctrl, ch}
	st, ok := p.channels[k]
	if !ok {
		st = &PWMChannelState{}
		p.channels[k] = st
	}
	return st
}

// Enable turns the channel on, preserving any previously configured
// frequency and duty cycle.
func (p *PWMController) Enable(ctrl, ch uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return newErr(NotInitialized, "pwm controller not initialized")
	}
	p.stateLocked(ctrl, ch).Enabled = true
	return nil
}

// Disable turns the channel off without clearing its frequency/duty
// configuration.
func (p *PWMController) Disable(ctrl, ch uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return newErr(NotInitialized, "pwm controller not initialized")
	}
	p.stateLocked(ctrl, ch).Enabled = false
	return nil
}

// SetFrequency configures the channel's frequency in Hz, returning the
// value actually stored (this model applies it verbatim; a real controller
// would round to the nearest achievable divider).
func (p *PWMController) SetFrequency(ctrl, ch uint8, hz uint32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0, newErr(NotInitialized, "pwm controller not initialized")
	}
	p.stateLocked(ctrl, ch).Frequency = hz
	return hz, nil
}

// SetDutyPercent configures the channel's duty cycle, 0-100.
func (p *PWMController) SetDutyPercent(ctrl, ch uint8, pct uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return newErr(NotInitialized, "pwm controller not initialized")
	}
	if pct > 100 {
		return newErr(InvalidParameter, "duty percent %d out of range [0, 100]", pct)
	}
	p.stateLocked(ctrl, ch).DutyPct = pct
	return nil
}

// State returns a copy of the channel's current configuration.
func (p *PWMController) State(ctrl, ch uint8) PWMChannelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.stateLocked(ctrl, ch)
}
