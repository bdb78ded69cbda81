package agg

import (
	"fmt"
	"strings"

	"github.com/huangsam/donorlens/schema"
)

// ResolveDonorKey maps a gift to its donor key using the cascade
// id, then lower-cased email, then name, then "unknown-<row>".
// The second value is a warning, set only when the synthetic key is used.
func ResolveDonorKey(rec schema.GiftRecord) (schema.DonorKey, string) {
	if id := strings.TrimSpace(rec.DonorID); id != "" {
		return schema.DonorKey(id), ""
	}
	if email := strings.ToLower(strings.TrimSpace(rec.DonorEmail)); email != "" {
		return schema.DonorKey(email), ""
	}
	if name := strings.TrimSpace(rec.DonorName); name != "" {
		return schema.DonorKey(name), ""
	}
	key := fmt.Sprintf("unknown-%d", rec.Row)
	return schema.DonorKey(key), fmt.Sprintf("Row %d: no donor id, email, or name; using %s", rec.Row, key)
}
