package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelperKeyNames verifies helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Component", KeyComponent, "spec", Component("spec")},
		{"Version", KeyVersion, "1.0", Version("1.0")},
		{"Document", KeyDocument, "modules/ROOT/pages/a.adoc", Document("modules/ROOT/pages/a.adoc")},
		{"Anchor", KeyAnchor, "sec-a", Anchor("sec-a")},
		{"Style", KeyStyle, "full", Style("full")},
		{"Include", KeyInclude, "partial$x.adoc", Include("partial$x.adoc")},
		{"Reference", KeyReference, "<<sec-a>>", Reference("<<sec-a>>")},
		{"Rule", KeyRule, "orphan-page", Rule("orphan-page")},
		{"Stage", KeyStage, "index", Stage("index")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.attrKey, tc.attr.Key)
			require.Equal(t, tc.attrVal, tc.attr.Value.String())
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	require.Equal(t, int64(12), Line(12).Value.Int64())
	require.Equal(t, int64(3), Count(3).Value.Int64())
	require.InDelta(t, 1.5, DurationMS(1.5).Value.Float64(), 0.0001)
}

func TestErrorHelper(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
