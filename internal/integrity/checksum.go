// Package integrity provides deterministic checksums for immutable
// publication records.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

// checksumSeparator joins the covered fields. The field list, its order and
// its formatting are frozen: any change invalidates every stored checksum.
const checksumSeparator = "|"

// canonicalFields renders the covered field list in its fixed order and
// precision.
func canonicalFields(p *models.ImmutablePrediction) []string {
	return []string{
		fmt.Sprintf("%d", p.FixtureID),
		fmt.Sprintf("%.4f", p.LambdaHome),
		fmt.Sprintf("%.4f", p.LambdaAway),
		string(p.Market),
		fmt.Sprintf("%.4f", p.Probability),
		fmt.Sprintf("%.3f", p.Odds),
		fmt.Sprintf("%.4f", p.EVAdjusted),
		fmt.Sprintf("%.0f", p.Confidence),
		p.PublishedAt.UTC().Format(time.RFC3339),
	}
}

// GenerateChecksum computes the SHA-256 digest over the fixed field list.
func GenerateChecksum(p *models.ImmutablePrediction) string {
	payload := strings.Join(canonicalFields(p), checksumSeparator)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum recomputes the digest and compares it with the stored one.
// A mismatch means the record was mutated after publication and must be
// treated as unusable.
func VerifyChecksum(p *models.ImmutablePrediction) bool {
	return p.Checksum != "" && GenerateChecksum(p) == p.Checksum
}
