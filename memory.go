package wheelbindings

// Memory is a little-endian view of linear memory shared by the host and a
// guest. Accesses outside the current size fail instead of panicking.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU64(offset uint32, value uint64) error
}
