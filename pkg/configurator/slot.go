package configurator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownSlotPolicy is returned by [ParseSlotPolicy].
var ErrUnknownSlotPolicy = errors.New("unknown slot policy")

// SlotPolicy decides which write to a [ModuleSlot] wins when several
// configurators report a module.
type SlotPolicy int

const (
	// SlotLastRegistered keeps the value written by the configurator with the
	// highest registration index, regardless of completion order.
	SlotLastRegistered SlotPolicy = iota
	// SlotFirstRegistered keeps the value written by the configurator with the
	// lowest registration index.
	SlotFirstRegistered
	// SlotUnordered keeps the value written last in time.
	SlotUnordered
)

// SlotPolicies lists the names accepted by [ParseSlotPolicy].
var SlotPolicies = []string{
	SlotLastRegistered.String(),
	SlotFirstRegistered.String(),
	SlotUnordered.String(),
}

// ParseSlotPolicy parses a slot policy name. The empty string selects
// [SlotLastRegistered].
func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch strings.ToLower(s) {
	case "", "lastregistered":
		return SlotLastRegistered, nil
	case "firstregistered":
		return SlotFirstRegistered, nil
	case "unordered":
		return SlotUnordered, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSlotPolicy, s)
}

func (p SlotPolicy) String() string {
	switch p {
	case SlotLastRegistered:
		return "lastRegistered"
	case SlotFirstRegistered:
		return "firstRegistered"
	case SlotUnordered:
		return "unordered"
	}

	return fmt.Sprintf("SlotPolicy(%d)", int(p))
}

// ModuleSlot is the shared output cell for the module name derived by
// configurators. It is safe for concurrent use.
type ModuleSlot struct {
	value  string
	writer Descriptor
	mu     sync.Mutex
	policy SlotPolicy
	set    bool
}

// NewModuleSlot creates an empty [ModuleSlot].
func NewModuleSlot(policy SlotPolicy) *ModuleSlot {
	return &ModuleSlot{policy: policy}
}

// Set offers module, written by writer. It reports whether the value was
// accepted under the slot's policy.
func (s *ModuleSlot) Set(writer Descriptor, module string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set {
		switch s.policy {
		case SlotLastRegistered:
			if writer.Index < s.writer.Index {
				return false
			}
		case SlotFirstRegistered:
			if writer.Index > s.writer.Index {
				return false
			}
		case SlotUnordered:
		}
	}

	s.value = module
	s.writer = writer
	s.set = true

	return true
}

// Get returns the module and the name of the configurator that wrote it.
func (s *ModuleSlot) Get() (module, writer string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value, s.writer.Name, s.set
}

// Policy returns the slot's policy.
func (s *ModuleSlot) Policy() SlotPolicy {
	return s.policy
}
