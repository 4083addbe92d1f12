package sigma

import (
    "encoding/binary"
    "fmt"
    "strconv"
    "strings"
)

// SecureCompare performs constant-time comparison of byte slices
func SecureCompare(a, b []byte) bool {
    if len(a) != len(b) {
        return false
    }

    var result byte
    for i := 0; i < len(a); i++ {
        result |= a[i] ^ b[i]
    }

    return result == 0
}

// ZeroizeBytes securely clears a byte slice
func ZeroizeBytes(data []byte) {
    for i := range data {
        data[i] = 0
    }
}

func isZeroBytes(data []byte) bool {
    for _, b := range data {
        if b != 0 {
            return false
        }
    }
    return true
}

// putUint16 appends a big-endian length prefix, failing when n does not fit.
func putUint16(buf []byte, n int) ([]byte, error) {
    if n < 0 || n > 0xFFFF {
        return nil, fmt.Errorf("length %d does not fit in 16 bits", n)
    }
    return binary.BigEndian.AppendUint16(buf, uint16(n)), nil
}

// NodePosition is the path of child indices from the root of a proof tree.
// The root has the empty position.
type NodePosition []int

// Child returns the position of the idx-th child.
func (p NodePosition) Child(idx int) NodePosition {
    child := make(NodePosition, len(p)+1)
    copy(child, p)
    child[len(p)] = idx
    return child
}

func (p NodePosition) String() string {
    if len(p) == 0 {
        return "root"
    }
    parts := make([]string, len(p))
    for i, idx := range p {
        parts[i] = strconv.Itoa(idx)
    }
    return strings.Join(parts, "-")
}
