package tree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEnvelope prefixes envelope content hashes. The version suffix
// allows the algorithm to change without colliding with older hashes.
const DomainEnvelope = "oneof/envelope/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex content hash of n's canonical form under domain.
// Trees that are Equal hash identically regardless of member order.
func Hash(domain string, n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}
