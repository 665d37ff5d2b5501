package memindex

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the dedup key of a piece of content.
func Fingerprint(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}
