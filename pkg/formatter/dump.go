package formatter

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/telekom/loghtml/pkg/record"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump returns a deep structural dump of the record with type tags and nested values.
func Dump(r record.Record) string {
	return dumper.Sdump(normalize(r))
}

// normalize makes an empty extra list indistinguishable from a missing one.
func normalize(r record.Record) record.Record {
	if len(r.Extra) == 0 {
		r.Extra = nil
	}
	return r
}
