package record

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// IdentityKey derives the deduplication key for a record. It is a pure
// function of the record's field values: two records with identical
// normalized {pin, date, notice_title} collide to the same key regardless
// of processing order.
//
// When any key component is absent or unparsed, the key falls back to a
// hash of the acquired raw text so distinct incomplete documents do not
// collapse into one bucket.
func (r *ExtractionRecord) IdentityKey() string {
	pin := r.Fields[FieldPIN]
	date := r.Fields[FieldDate]
	title := r.Fields[FieldNoticeTitle]

	if pin.Present && pin.Parsed && date.Present && date.Parsed && title.Present {
		keyString := fmt.Sprintf("pin:%s|date:%s|title:%s|",
			trimUpper(pin.Normalized),
			trimUpper(date.Normalized),
			trimUpper(title.Value()),
		)
		return hashHex(keyString)
	}

	return "raw:" + hashHex(r.rawText)
}

func hashHex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
