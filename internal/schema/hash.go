package schema

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// HeaderHash fingerprints an ordered header list: MD5 over each
// whitespace-normalised header, in order, each prefixed with its byte
// length so that distinct lists never feed the same bytes to the hash.
func HeaderHash(headers []string) string {
	h := md5.New()
	for _, header := range headers {
		header = normaliseSpace(header)
		h.Write([]byte(strconv.Itoa(len(header))))
		h.Write([]byte{':'})
		h.Write([]byte(header))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normaliseSpace trims and collapses runs of whitespace to one space.
func normaliseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
