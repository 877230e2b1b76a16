package host

import (
	"github.com/tetratelabs/wazero/api"

	wheelbindings "github.com/wippyai/wheel-bindings"
	"github.com/wippyai/wheel-bindings/errors"
)

var _ wheelbindings.Memory = (*GuestMemory)(nil)

// GuestMemory wraps wazero memory to implement wheelbindings.Memory.
// Slices returned by Read alias guest memory and are only valid until the
// memory grows.
type GuestMemory struct {
	mem api.Memory
}

func NewGuestMemory(mem api.Memory) *GuestMemory {
	return &GuestMemory{mem: mem}
}

func (m *GuestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseLift, nil, offset, length)
	}
	return data, nil
}

func (m *GuestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseLower, nil, offset, uint32(len(data)))
	}
	return nil
}

func (m *GuestMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseLift, nil, offset, 1)
	}
	return v, nil
}

func (m *GuestMemory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseLift, nil, offset, 8)
	}
	return v, nil
}

func (m *GuestMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseLower, nil, offset, 1)
	}
	return nil
}

func (m *GuestMemory) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseLower, nil, offset, 8)
	}
	return nil
}
