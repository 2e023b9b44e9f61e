package flake

import (
	"encoding/binary"
	"os"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

// FNV-1a 64-bit parameters.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// machineIDPath is the conventional location of the host machine identifier.
// A variable so tests can point it at a fixture.
var machineIDPath = "/etc/machine-id"

// Source yields one host-identity input for shard derivation. The second
// return reports whether the input was available in this environment.
type Source func() ([]byte, bool)

// HostnameSource reads the HOSTNAME environment variable, the most reliable
// identity signal in containerized deployments.
func HostnameSource() ([]byte, bool) {
	v := os.Getenv("HOSTNAME")
	if v == "" {
		return nil, false
	}
	return []byte(v), true
}

// MachineIDSource reads the machine-id file. Absence is tolerated; the file
// frequently does not exist inside containers.
func MachineIDSource() ([]byte, bool) {
	b, err := os.ReadFile(machineIDPath)
	if err != nil {
		return nil, false
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, false
	}
	return []byte(s), true
}

// DefaultSources returns the host-identity sources consulted by New, in
// fold order. Deployments with an externally assigned identity can pass
// their own Source list to DeriveShardIDFrom instead.
func DefaultSources() []Source {
	return []Source{HostnameSource, MachineIDSource}
}

// DeriveShardID derives a best-effort shard ID from the default identity
// sources. It is invoked per call, not cached.
func DeriveShardID() uint16 {
	return DeriveShardIDFrom(DefaultSources())
}

// DeriveShardIDFrom folds the available identity sources, then the process
// ID, into an FNV-1a hash and reduces it mod 8192. When no source yields a
// host signal, fallback entropy is folded in as well to reduce collisions
// between co-located processes that happen to share a PID across hosts.
//
// The result is deterministic given identical source inputs and PID;
// uniqueness across generators is best effort only and remains the caller's
// responsibility.
func DeriveShardIDFrom(sources []Source) uint16 {
	hash := fnvOffset
	hasIdentity := false
	for _, src := range sources {
		if b, ok := src(); ok {
			hasIdentity = true
			hash = fnvFold(hash, b)
		}
	}
	hash = fnvFold(hash, []byte(strconv.Itoa(os.Getpid())))
	if !hasIdentity {
		var eb [4]byte
		binary.LittleEndian.PutUint32(eb[:], fallbackEntropy())
		hash = fnvFold(hash, eb[:])
	}
	return uint16(hash % uint64(MaxShardID+1))
}

func fnvFold(hash uint64, b []byte) uint64 {
	for _, c := range b {
		hash ^= uint64(c)
		hash *= fnvPrime
	}
	return hash
}

// fallbackEntropy returns sub-second clock jitter, or an address-derived
// value in the degenerate case of a zero nanosecond reading.
func fallbackEntropy() uint32 {
	if ns := time.Now().Nanosecond(); ns != 0 {
		return uint32(ns)
	}
	var probe uint64
	return uint32(uintptr(unsafe.Pointer(&probe)))
}
