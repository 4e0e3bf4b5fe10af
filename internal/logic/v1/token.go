package v1

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// TokenLength is the length in characters of every session token.
const TokenLength = 64

// DeriveToken maps a (userID, ip) pair to its session token: the
// SHA-256 digest of the 4-byte big-endian encoding of userID followed
// by the raw bytes of ip, as lowercase hex. The derivation is
// deterministic, so the same pair always yields the identical token
// and stored tokens never rotate.
func DeriveToken(userID int, ip string) string {
	buf := make([]byte, 4, 4+len(ip))
	binary.BigEndian.PutUint32(buf, uint32(int32(userID)))
	buf = append(buf, ip...)

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
