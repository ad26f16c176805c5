package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Hierarchy ceilings
	MaxMainNodes          int
	MaxSecondaryPerMain   int
	MaxPostPerSecondary   int
	DefaultMainLabel      string
	DefaultSecondaryLabel string
	DefaultPostLabel      string

	// Layout
	RootRadius              float64
	MainToSecondaryDistance float64
	SecondaryToPostDistance float64
	ChildFanStep            float64
	ChildFanBase            float64

	// Rendered card footprint, used for pointer hit testing and edge anchors
	NodeWidth  float64
	NodeHeight float64

	// Persistence sync
	SyncDebounce time.Duration
	SyncTimeout  time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxMainNodes:          6,
		MaxSecondaryPerMain:   3,
		MaxPostPerSecondary:   6,
		DefaultMainLabel:      "Main Pillar",
		DefaultSecondaryLabel: "Secondary Topic",
		DefaultPostLabel:      "Post Idea",

		RootRadius:              300,
		MainToSecondaryDistance: 320,
		SecondaryToPostDistance: 260,
		ChildFanStep:            70,
		ChildFanBase:            30,

		NodeWidth:  200,
		NodeHeight: 80,

		SyncDebounce: 2 * time.Second,
		SyncTimeout:  10 * time.Second,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxMainNodes <= 0 || c.MaxSecondaryPerMain <= 0 || c.MaxPostPerSecondary <= 0 {
		return fmt.Errorf("node ceilings must be positive")
	}
	if c.MainToSecondaryDistance <= c.SecondaryToPostDistance {
		return fmt.Errorf("main to secondary distance must exceed secondary to post distance")
	}
	if c.SyncDebounce <= 0 {
		return fmt.Errorf("sync debounce must be positive")
	}
	return nil
}
