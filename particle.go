package tableau

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state. Unexported; managed by ParticleEmitter.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64 // initial lifetime (for computing t)
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
	start, end Color
	color      Color
}

// Particle is a read-only view of a live particle handed to renderers.
type Particle struct {
	X, Y  float64 // emitter-local, or world space when WorldSpace is set
	Scale float32
	Alpha float32
	Color Color
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are silently dropped when full.
	MaxParticles int
	// EmitRate is the number of particles spawned per second while active.
	EmitRate float64
	// Burst is the number of particles spawned at once when the emitter
	// starts and again each time its looping item wraps.
	Burst int
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial particle speeds in units per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// StartScale is the range of scale factors at birth, interpolated to EndScale over lifetime.
	StartScale Range
	// EndScale is the range of scale factors at death.
	EndScale Range
	// StartAlpha is the range of alpha values at birth, interpolated to EndAlpha over lifetime.
	StartAlpha Range
	// EndAlpha is the range of alpha values at death.
	EndAlpha Range
	// Gravity is the constant acceleration applied to all particles each frame.
	Gravity Vec2
	// StartColor is the tint at birth, interpolated to EndColor over lifetime.
	StartColor Color
	// EndColor is the tint at death.
	EndColor Color
	// Region is the TextureRegion used to render each particle.
	Region TextureRegion
	// BlendMode is the compositing operation for particle rendering.
	BlendMode BlendMode
	// WorldSpace, when true, causes particles to keep their world position
	// once emitted rather than following the emitting item.
	WorldSpace bool
}

// ParticleEmitter manages a pool of particles with CPU-based simulation.
type ParticleEmitter struct {
	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
	burstDone bool
	rng       *rand.Rand
	// Last known world position of the emitting item, used to spawn
	// world-space particles.
	worldX, worldY float64
}

// NewParticleEmitter creates a ParticleEmitter with a preallocated pool.
func NewParticleEmitter(cfg EmitterConfig) *ParticleEmitter {
	max := cfg.MaxParticles
	if max <= 0 {
		max = 128
	}
	return &ParticleEmitter{
		config:    cfg,
		particles: make([]particle, max),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Seed makes the emitter deterministic.
func (e *ParticleEmitter) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Start begins emitting particles. The burst fires on the next update.
func (e *ParticleEmitter) Start() {
	e.active = true
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.active = false
}

// Reset stops emitting, kills all alive particles and re-arms the burst.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
	e.burstDone = false
}

// OnLoopStart re-arms the one-shot burst so it fires again on the next cycle.
func (e *ParticleEmitter) OnLoopStart() {
	e.burstDone = false
}

// IsActive reports whether the emitter is currently emitting new particles.
func (e *ParticleEmitter) IsActive() bool {
	return e.active
}

// AliveCount returns the number of alive particles.
func (e *ParticleEmitter) AliveCount() int {
	return e.alive
}

// Config returns a pointer to the emitter's config for live tuning.
func (e *ParticleEmitter) Config() *EmitterConfig {
	return &e.config
}

// Each calls fn for every alive particle.
func (e *ParticleEmitter) Each(fn func(Particle)) {
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		fn(Particle{X: p.x, Y: p.y, Scale: p.scale, Alpha: p.alpha, Color: p.color})
	}
}

// Update advances particle simulation by dt seconds.
func (e *ParticleEmitter) Update(dt float64) {
	gx := e.config.Gravity.X * dt
	gy := e.config.Gravity.Y * dt

	// Update existing particles, swap-remove dead ones.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vx += gx
		p.vy += gy
		p.x += p.vx * dt
		p.y += p.vy * dt

		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)
		p.color = Color{
			R: lerp(p.start.R, p.end.R, float64(t)),
			G: lerp(p.start.G, p.end.G, float64(t)),
			B: lerp(p.start.B, p.end.B, float64(t)),
			A: 1,
		}

		i++
	}

	if !e.active {
		return
	}
	if !e.burstDone {
		e.burstDone = true
		for n := 0; n < e.config.Burst && e.alive < len(e.particles); n++ {
			e.spawnParticle()
		}
	}
	if e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawnParticle()
			}
		}
	}
}

// spawnParticle initializes the particle at slot e.alive and increments alive.
func (e *ParticleEmitter) spawnParticle() {
	p := &e.particles[e.alive]

	angle := e.config.Angle.random(e.rng)
	speed := e.config.Speed.random(e.rng)
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed

	if e.config.WorldSpace {
		p.x = e.worldX
		p.y = e.worldY
	} else {
		p.x = 0
		p.y = 0
	}

	p.life = e.config.Lifetime.random(e.rng)
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(e.config.StartScale.random(e.rng))
	p.endScale = float32(e.config.EndScale.random(e.rng))
	p.scale = p.startScale

	p.startAlpha = float32(e.config.StartAlpha.random(e.rng))
	p.endAlpha = float32(e.config.EndAlpha.random(e.rng))
	p.alpha = p.startAlpha

	p.start = e.config.StartColor
	p.end = e.config.EndColor
	p.color = p.start

	e.alive++
}

// lerp32 linearly interpolates between a and b by t (float32).
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// random returns a value in [Min, Max] drawn from rng.
func (r Range) random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// --- Content ---

// ParticleContent is an item driving a particle emitter. Particles render
// outside the sprite batches, so an active particle item splits sprite runs.
type ParticleContent struct {
	Emitter *ParticleEmitter
}

// NewParticleContent returns particle content with a fresh emitter.
func NewParticleContent(cfg EmitterConfig) *ParticleContent {
	return &ParticleContent{Emitter: NewParticleEmitter(cfg)}
}

// Kind implements Content.
func (*ParticleContent) Kind() ContentKind { return ContentParticle }

// OnLoopStart implements LoopStarter.
func (p *ParticleContent) OnLoopStart() {
	p.Emitter.OnLoopStart()
}

func (p *ParticleContent) activate(*Item) {
	p.Emitter.Start()
}

func (p *ParticleContent) deactivate(*Item) {
	p.Emitter.Stop()
}

func (p *ParticleContent) update(it *Item, dt float64) {
	if p.Emitter.config.WorldSpace {
		wp := it.transform.WorldPosition()
		p.Emitter.worldX, p.Emitter.worldY = wp.X, wp.Y
	}
	p.Emitter.Update(dt)
}
