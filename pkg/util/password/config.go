package password

import "github.com/medibook/medibook_backend/config"

// Config holds Argon2id hashing parameters and the password policy.
type Config struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// LowMemoryMode caps memory at 32 MiB
	LowMemoryMode bool

	MinLength int
}

func DefaultConfig() Config {
	return Config{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   8,
	}
}

func (c Config) ToParams() *Params {
	def := DefaultParams()
	p := &Params{
		Memory:      c.MemoryKiB,
		Iterations:  c.Iterations,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
	if p.Memory == 0 {
		p.Memory = def.Memory
	}
	if c.LowMemoryMode && p.Memory > 32*1024 {
		p.Memory = 32 * 1024
	}
	if p.Iterations == 0 {
		p.Iterations = def.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = def.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = def.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = def.KeyLength
	}
	return p
}

func FromCentralConfig(c config.PasswordConfig) Config {
	cfg := Config{
		MemoryKiB:     c.MemoryKiB,
		Iterations:    c.Iterations,
		Parallelism:   c.Parallelism,
		SaltLength:    c.SaltLength,
		KeyLength:     c.KeyLength,
		LowMemoryMode: c.LowMemoryMode,
		MinLength:     c.MinLength,
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultConfig().MinLength
	}
	return cfg
}
