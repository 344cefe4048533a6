package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func europaFields() map[string]any {
	return map[string]any{
		"name":    "Europa",
		"size":    3122.0,
		"color":   0xEFEFEF,
		"texture": "europa.jpg",
		"type":    "moon",
	}
}

func TestValidateCandidate_Valid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   Entry
	}{
		{
			name:   "minimal moon",
			fields: europaFields(),
			want:   Entry{Name: "Europa", Size: 3122, Color: 0xEFEFEF, Texture: "europa.jpg", Type: TypeMoon},
		},
		{
			name: "all optional fields",
			fields: map[string]any{
				"name": "Crab Nebula", "size": json.Number("11"), "color": json.Number("14711391"),
				"texture": "crab_nebula.jpg", "type": "nebula", "renderMode": "billboard", "emissive": true,
			},
			want: Entry{
				Name: "Crab Nebula", Size: 11, Color: 14711391, Texture: "crab_nebula.jpg",
				Type: TypeNebula, RenderMode: RenderBillboard, Emissive: boolPtr(true),
			},
		},
		{
			name: "string inputs from a driver",
			fields: map[string]any{
				"name": "Mars", "size": "6779", "color": "#C1440E", "texture": "mars.jpg",
			},
			want: Entry{Name: "Mars", Size: 6779, Color: 0xC1440E, Texture: "mars.jpg"},
		},
		{
			name: "moon with parent",
			fields: map[string]any{
				"name": "Io", "size": 3643, "color": 16776960, "texture": "io.jpg", "type": "moon", "parent": "Jupiter",
			},
			want: Entry{Name: "Io", Size: 3643, Color: 16776960, Texture: "io.jpg", Type: TypeMoon, Parent: "Jupiter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, findings := ValidateCandidate(tt.fields)
			require.True(t, findings.OK(), "unexpected violations: %v", findings.Violations)
			require.NotNil(t, entry)
			assert.Equal(t, tt.want, *entry)
			assert.Empty(t, findings.Warnings)
		})
	}
}

func TestValidateCandidate_FieldsRoundTrip(t *testing.T) {
	entry, findings := ValidateCandidate(europaFields())
	require.True(t, findings.OK())

	again, findings := ValidateCandidate(entry.Fields())
	require.True(t, findings.OK())
	assert.Equal(t, entry, again)
}

func TestValidateCandidate_RequiredFields(t *testing.T) {
	for _, field := range RequiredFields {
		t.Run("missing "+field, func(t *testing.T) {
			fields := europaFields()
			delete(fields, field)
			entry, findings := ValidateCandidate(fields)
			assert.Nil(t, entry)
			require.False(t, findings.OK())
			assert.Contains(t, messages(findings.Violations), "Missing required field '"+field+"'")
		})
	}

	t.Run("empty name", func(t *testing.T) {
		fields := europaFields()
		fields["name"] = ""
		entry, findings := ValidateCandidate(fields)
		assert.Nil(t, entry)
		assert.Contains(t, messages(findings.Violations), "Field 'name' is empty")
	})
}

func TestValidateCandidate_BadSize(t *testing.T) {
	for _, size := range []any{0, -1.5, "abc", "NaN", true, json.Number("-3"), []any{1}} {
		fields := europaFields()
		fields["size"] = size
		entry, findings := ValidateCandidate(fields)
		assert.Nil(t, entry, "size %v", size)
		assert.False(t, findings.OK(), "size %v", size)
		for _, v := range findings.Violations {
			assert.Equal(t, KindSchemaViolation, v.Kind)
		}
	}
}

func TestValidateCandidate_Traversal(t *testing.T) {
	for _, texture := range []string{"../europa.jpg", "moons/europa.jpg", `moons\europa.jpg`, "..", "europa..jpg"} {
		t.Run(texture, func(t *testing.T) {
			fields := europaFields()
			fields["texture"] = texture
			entry, findings := ValidateCandidate(fields)
			assert.Nil(t, entry)
			require.Len(t, findings.Violations, 1)
			assert.Equal(t, KindTraversalRejected, findings.Violations[0].Kind)

			err := findings.Err("Europa")
			assert.True(t, errors.Is(err, ErrTraversalRejected))
			assert.True(t, errors.Is(err, ErrSchemaViolation))
		})
	}

	t.Run("other fields invalid too", func(t *testing.T) {
		fields := europaFields()
		fields["texture"] = "../../etc/passwd"
		fields["size"] = -1
		_, findings := ValidateCandidate(fields)
		assert.True(t, errors.Is(findings.Err("Europa"), ErrTraversalRejected))
	})
}

func TestValidateCandidate_ColorWarnings(t *testing.T) {
	fields := europaFields()
	fields["color"] = 0x1000000
	entry, findings := ValidateCandidate(fields)
	require.NotNil(t, entry, "out-of-range color must still be accepted")
	require.Len(t, findings.Warnings, 1)
	assert.Equal(t, KindUnusualColor, findings.Warnings[0].Kind)

	fields["color"] = 1.5
	entry, findings = ValidateCandidate(fields)
	assert.Nil(t, entry)
	assert.Contains(t, messages(findings.Violations), "Color must be an integer (got 1.5)")
}

func TestValidateCandidate_Enums(t *testing.T) {
	fields := europaFields()
	fields["type"] = "comet"
	fields["renderMode"] = "cube"
	_, findings := ValidateCandidate(fields)
	msgs := messages(findings.Violations)
	assert.Contains(t, msgs, "Invalid type 'comet' (must be one of ['planet', 'moon', 'nebula', 'galaxy', 'star_cluster', 'star'])")
	assert.Contains(t, msgs, "Invalid renderMode 'cube' (must be one of ['sphere', 'flat', 'billboard'])")
}

func TestValidateCandidate_ParentWithoutMoon(t *testing.T) {
	fields := europaFields()
	fields["type"] = "planet"
	fields["parent"] = "Sun"
	entry, findings := ValidateCandidate(fields)
	require.NotNil(t, entry)
	require.Len(t, findings.Warnings, 1)
	assert.Equal(t, KindOrphanParent, findings.Warnings[0].Kind)
	assert.Equal(t, "Sun", entry.Parent)
}

func TestValidateCandidate_Emissive(t *testing.T) {
	fields := europaFields()
	fields["emissive"] = "yes"
	entry, findings := ValidateCandidate(fields)
	assert.Nil(t, entry)
	assert.Contains(t, messages(findings.Violations), "emissive must be a boolean (got yes)")
}

func TestValidateRecord_Identity(t *testing.T) {
	_, findings := ValidateRecord(4, map[string]any{"size": 1})
	require.NotEmpty(t, findings.Violations)
	assert.Equal(t, "Object #4", findings.Violations[0].Entry)
}

func TestValidateRecord_StoredColorMustBeInteger(t *testing.T) {
	fields := map[string]any{"name": "Io", "size": json.Number("1821"), "color": "#EFEFEF", "texture": "io.jpg"}
	entry, findings := ValidateRecord(0, fields)
	assert.Nil(t, entry)
	assert.Contains(t, messages(findings.Violations), "Color must be an integer (got #EFEFEF)")

	fields["color"] = "15790320"
	_, findings = ValidateRecord(0, fields)
	assert.False(t, findings.OK())

	fields["color"] = json.Number("15790320")
	entry, findings = ValidateRecord(0, fields)
	require.NotNil(t, entry)
	assert.Equal(t, 15790320, entry.Color)
	assert.Empty(t, findings.Warnings)
}

func TestValidateRecord_HugeColorReportsOriginalText(t *testing.T) {
	fields := map[string]any{"name": "Io", "size": json.Number("1821"), "color": json.Number("1e30"), "texture": "io.jpg"}
	entry, findings := ValidateRecord(0, fields)
	require.NotNil(t, entry)
	require.Len(t, findings.Warnings, 1)
	assert.Equal(t, "Color value seems unusual (1e30)", findings.Warnings[0].Message)

	fields["color"] = json.Number("-1e30")
	_, findings = ValidateRecord(0, fields)
	require.Len(t, findings.Warnings, 1)
	assert.Equal(t, "Color value seems unusual (-1e30)", findings.Warnings[0].Message)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		err  bool
	}{
		{in: "#EFEFEF", want: 0xEFEFEF},
		{in: "0xefefef", want: 0xEFEFEF},
		{in: "EFEFEF", want: 0xEFEFEF},
		{in: "15790320", want: 15790320},
		{in: json.Number("255"), want: 255},
		{in: json.Number("255.0"), want: 255},
		{in: 42.0, want: 42},
		{in: 1e30, want: math.MaxInt64},
		{in: -1e30, want: math.MinInt64},
		{in: json.Number("1e30"), want: math.MaxInt64},
		{in: json.Number("1e400"), err: true},
		{in: math.NaN(), err: true},
		{in: "#GGGGGG", err: true},
		{in: false, err: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.err {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
