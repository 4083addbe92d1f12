package sigma

import (
	"encoding/binary"
	"encoding/hex"
)

// gf2_192Reduction holds the low terms of the irreducible polynomial
// x^192 + x^7 + x^2 + x + 1.
const gf2_192Reduction = 0x87

// GF2_192 is an element of the binary field GF(2^192), stored as three
// little-endian 64-bit words. Addition is XOR.
type GF2_192 struct {
	w [3]uint64
}

// GF2_192FromBytes decodes 24 little-endian bytes. Shorter input is zero
// padded on the high side.
func GF2_192FromBytes(data []byte) GF2_192 {
	var buf [24]byte
	copy(buf[:], data)
	return GF2_192{w: [3]uint64{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
		binary.LittleEndian.Uint64(buf[16:24]),
	}}
}

// GF2_192FromByte embeds a small integer; used for interpolation points.
func GF2_192FromByte(b byte) GF2_192 {
	return GF2_192{w: [3]uint64{uint64(b), 0, 0}}
}

// Bytes encodes the element as 24 little-endian bytes
func (a GF2_192) Bytes() []byte {
	out := make([]byte, 24)
	binary.LittleEndian.PutUint64(out[0:8], a.w[0])
	binary.LittleEndian.PutUint64(out[8:16], a.w[1])
	binary.LittleEndian.PutUint64(out[16:24], a.w[2])
	return out
}

func (a GF2_192) String() string {
	return hex.EncodeToString(a.Bytes())
}

func (a GF2_192) IsZero() bool {
	return a.w[0]|a.w[1]|a.w[2] == 0
}

func (a GF2_192) Equal(b GF2_192) bool {
	return a.w == b.w
}

// Add returns a + b, which is also a - b in characteristic 2
func (a GF2_192) Add(b GF2_192) GF2_192 {
	return GF2_192{w: [3]uint64{a.w[0] ^ b.w[0], a.w[1] ^ b.w[1], a.w[2] ^ b.w[2]}}
}

func (a GF2_192) mulX() GF2_192 {
	carry := a.w[2] >> 63
	out := GF2_192{w: [3]uint64{
		a.w[0] << 1,
		a.w[1]<<1 | a.w[0]>>63,
		a.w[2]<<1 | a.w[1]>>63,
	}}
	if carry != 0 {
		out.w[0] ^= gf2_192Reduction
	}
	return out
}

// Mul returns a * b modulo the field polynomial
func (a GF2_192) Mul(b GF2_192) GF2_192 {
	var res GF2_192
	x := a
	for i := 0; i < 192; i++ {
		if (b.w[i/64]>>(uint(i)%64))&1 == 1 {
			res = res.Add(x)
		}
		x = x.mulX()
	}
	return res
}

// Invert returns a^-1, computed as a^(2^192 - 2). Zero maps to zero.
func (a GF2_192) Invert() GF2_192 {
	result := GF2_192FromByte(1)
	sq := a
	for i := 1; i < 192; i++ {
		sq = sq.Mul(sq)
		result = result.Mul(sq)
	}
	return result
}
