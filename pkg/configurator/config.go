package configurator

import (
	"fmt"
)

// Config controls how configurators are dispatched.
type Config struct {
	// SlotPolicy decides which configurator's module wins when several report
	// one. One of "lastRegistered" (default), "firstRegistered" or "unordered".
	SlotPolicy string `json:"slotPolicy,omitempty" jsonschema:"title=Slot Policy,enum=lastRegistered,enum=firstRegistered,enum=unordered"`
	// Workers limits how many background configurators run at the same time.
	Workers int `json:"workers,omitempty" jsonschema:"title=Workers,minimum=1"`
}

// NewConfig creates a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults sets unset fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.SlotPolicy == "" {
		c.SlotPolicy = SlotLastRegistered.String()
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks the slot policy name.
func (c *Config) Validate() error {
	_, err := ParseSlotPolicy(c.SlotPolicy)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	return nil
}

// Policy returns the parsed slot policy, falling back to
// [SlotLastRegistered] for unknown names.
func (c *Config) Policy() SlotPolicy {
	p, err := ParseSlotPolicy(c.SlotPolicy)
	if err != nil {
		return SlotLastRegistered
	}

	return p
}
