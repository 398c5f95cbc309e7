package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Frame represents a classical CAN (2.0A/2.0B) frame.
//
// Supported features:
//   - Standard (11-bit) and Extended (29-bit) identifiers
//   - Data frames and Remote Transmission Request (RTR)
//   - Data length 0-8 bytes (classical CAN)
//
// Not implemented: CAN FD specific fields.
type Frame struct {
	ID       uint32 // 11-bit (std) or 29-bit (ext)
	Extended bool   // true for 29-bit identifier
	RTR      bool   // remote transmission request
	Len      uint8  // 0..8
	Data     [8]byte
}

const (
	// MaxDataLen is the payload capacity of a classical CAN frame.
	MaxDataLen = 8

	// FrameSize is the size of the Linux struct can_frame record.
	FrameSize = 16
)

// can_id flag and mask bits (linux/can.h).
const (
	EFFFlag uint32 = 0x80000000
	RTRFlag uint32 = 0x40000000
	ERRFlag uint32 = 0x20000000
	SFFMask uint32 = 0x000007FF
	EFFMask uint32 = 0x1FFFFFFF
)

var (
	ErrInvalidID       = errors.New("canbus: invalid identifier")
	ErrInvalidLen      = errors.New("canbus: invalid data length")
	ErrPayloadTooLarge = errors.New("canbus: payload exceeds 8 bytes")
)

// Validate returns an error if the frame is not valid.
func (f Frame) Validate() error {
	if f.Len > MaxDataLen {
		return ErrInvalidLen
	}
	if f.Extended {
		if f.ID > EFFMask {
			return ErrInvalidID
		}
	} else if f.ID > SFFMask {
		return ErrInvalidID
	}
	return nil
}

// NewFrame builds a data frame. Identifiers above 0x7FF select the
// extended format.
func NewFrame(id uint32, data []byte) (Frame, error) {
	if len(data) > MaxDataLen {
		return Frame{}, fmt.Errorf("%w: got %d", ErrPayloadTooLarge, len(data))
	}
	f := Frame{ID: id, Extended: id > SFFMask, Len: uint8(len(data))}
	copy(f.Data[:], data)
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// MustFrame is NewFrame that panics on error. Convenience for examples.
func MustFrame(id uint32, data []byte) Frame {
	f, err := NewFrame(id, data)
	if err != nil {
		panic(err)
	}
	return f
}

// Payload returns the valid data bytes.
func (f Frame) Payload() []byte {
	n := int(f.Len)
	if n > MaxDataLen {
		n = MaxDataLen
	}
	return f.Data[:n]
}

// CANID returns the identifier with the EFF and RTR flags set as in can_id.
func (f Frame) CANID() uint32 {
	id := f.ID
	if f.Extended {
		id |= EFFFlag
	}
	if f.RTR {
		id |= RTRFlag
	}
	return id
}

// MarshalBinary encodes the frame to the Linux SocketCAN "struct can_frame" layout.
//
// Layout (little-endian):
//
//	0..3  can_id (with EFF/RTR flags)
//	4     can_dlc
//	5..7  padding (zero)
//	8..15 data bytes
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var buf [FrameSize]byte
	f.encode(&buf)
	return buf[:], nil
}

func (f Frame) encode(buf *[FrameSize]byte) {
	binary.LittleEndian.PutUint32(buf[0:4], f.CANID())
	buf[4] = f.Len
	copy(buf[8:16], f.Data[:])
}

// UnmarshalBinary decodes a frame from the Linux SocketCAN can_frame layout.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return fmt.Errorf("canbus: need %d bytes, got %d", FrameSize, len(data))
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	f.Extended = id&EFFFlag != 0
	f.RTR = id&RTRFlag != 0
	if f.Extended {
		f.ID = id & EFFMask
	} else {
		f.ID = id & SFFMask
	}
	f.Len = data[4]
	copy(f.Data[:], data[8:16])
	return f.Validate()
}

// String formats the frame the way candump does: "123 [2] DE AD".
func (f Frame) String() string {
	var b strings.Builder
	if f.Extended {
		fmt.Fprintf(&b, "%08X", f.ID)
	} else {
		fmt.Fprintf(&b, "%03X", f.ID)
	}
	fmt.Fprintf(&b, " [%d]", f.Len)
	if f.RTR {
		b.WriteString(" RTR")
		return b.String()
	}
	for _, c := range f.Payload() {
		fmt.Fprintf(&b, " %02X", c)
	}
	return b.String()
}
