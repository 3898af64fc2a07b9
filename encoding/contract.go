package encoding

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

// ContractMode selects what happens when a caller breaks an input contract
// of the codec, e.g. asks PackBits for more than 8 bits.
type ContractMode int32

const (
	// ContractClamp silently clamps the offending argument.
	ContractClamp ContractMode = iota
	// ContractLog logs a warning and clamps.
	ContractLog
	// ContractPanic panics with a *ContractViolation before any work is done.
	ContractPanic
)

var contractModeNames = [...]string{"clamp", "log", "panic"}

func (m ContractMode) String() string {
	if m >= 0 && int(m) < len(contractModeNames) {
		return contractModeNames[m]
	}
	return fmt.Sprintf("ContractMode(%d)", int32(m))
}

// ParseContractMode parses "clamp", "log" or "panic".
func ParseContractMode(s string) (ContractMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range contractModeNames {
		if n == s {
			return ContractMode(i), nil
		}
	}
	return 0, fmt.Errorf("invalid contract mode %q, must be one of %s", s, strings.Join(contractModeNames[:], ", "))
}

// ContractViolation is the panic value raised in ContractPanic mode.
type ContractViolation struct {
	Op     string
	Detail string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("encoding: %s: contract violation: %s", v.Op, v.Detail)
}

var contractMode atomic.Int32

func init() {
	contractMode.Store(int32(defaultContractMode))
}

// SetContractMode sets the process wide contract mode and returns the
// previous one.
func SetContractMode(m ContractMode) ContractMode {
	return ContractMode(contractMode.Swap(int32(m)))
}

// CurrentContractMode returns the active contract mode.
func CurrentContractMode() ContractMode {
	return ContractMode(contractMode.Load())
}

// violated reports a broken contract according to the active mode. It returns
// only in the clamp and log modes.
func violated(op string, format string, args ...any) {
	switch CurrentContractMode() {
	case ContractPanic:
		panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
	case ContractLog:
		slog.Warn("codec contract violation", "op", op, "detail", fmt.Sprintf(format, args...))
	}
}
