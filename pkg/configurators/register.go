package configurators

import (
	"fmt"

	"github.com/macropower/folio/pkg/configurator"
)

// Register adds the built-in configurators and the rule configurators of cfg
// to reg, in this order: gomod, rule configurators in declaration order,
// default-overrides.
func Register(reg *configurator.Registry, cfg *Config) error {
	cfg.EnsureDefaults()

	lister := NewLister(cfg.Scan.Options())

	_, err := reg.Register(GoModule())
	if err != nil {
		return fmt.Errorf("register %s: %w", GoModName, err)
	}

	for _, rc := range cfg.Configurators {
		desc, h, err := NewRuleConfigurator(rc, lister)
		if err != nil {
			return err
		}

		_, err = reg.Register(desc, h)
		if err != nil {
			return fmt.Errorf("register %s: %w", rc.Name, err)
		}
	}

	_, err = reg.Register(DefaultOverrides(cfg.Overrides, lister))
	if err != nil {
		return fmt.Errorf("register %s: %w", DefaultOverridesName, err)
	}

	return nil
}
