package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordStr(t *testing.T) {
	rec := Record{
		"name":      "Jordan",
		"VisitDate": "2026-03-15",
		"count":     float64(3),
	}

	t.Run("camelCase key", func(t *testing.T) {
		got, ok := rec.Str("name", "Name")
		assert.True(t, ok)
		assert.Equal(t, "Jordan", got)
	})

	t.Run("PascalCase fallback", func(t *testing.T) {
		got, ok := rec.Str("visitDate", "VisitDate")
		assert.True(t, ok)
		assert.Equal(t, "2026-03-15", got)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := rec.Str("phone", "Phone")
		assert.False(t, ok)
	})

	t.Run("non-string value", func(t *testing.T) {
		_, ok := rec.Str("count")
		assert.False(t, ok)
	})
}

func TestRecordBool(t *testing.T) {
	rec := Record{
		"isBlocked": true,
		"Active":    "false",
		"Flag":      "yes",
		"name":      "Jordan",
	}

	t.Run("native bool", func(t *testing.T) {
		got, ok := rec.Bool("isBlocked", "IsBlocked")
		assert.True(t, ok)
		assert.True(t, got)
	})

	t.Run("string false", func(t *testing.T) {
		got, ok := rec.Bool("active", "Active")
		assert.True(t, ok)
		assert.False(t, got)
	})

	t.Run("unparseable string", func(t *testing.T) {
		_, ok := rec.Bool("Flag")
		assert.False(t, ok)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := rec.Bool("deleted", "Deleted")
		assert.False(t, ok)
	})

	t.Run("non-bool value", func(t *testing.T) {
		_, ok := rec.Bool("name")
		assert.False(t, ok)
	})
}

func TestRecordNested(t *testing.T) {
	rec := Record{
		"Visitor": map[string]any{"status": "Blocked"},
		"plain":   "value",
	}

	t.Run("nested object under PascalCase key", func(t *testing.T) {
		nested, ok := rec.Nested("visitor", "Visitor")
		assert.True(t, ok)
		status, ok := nested.Str("status", "Status")
		assert.True(t, ok)
		assert.Equal(t, "Blocked", status)
	})

	t.Run("non-object value", func(t *testing.T) {
		_, ok := rec.Nested("plain")
		assert.False(t, ok)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := rec.Nested("resident", "Resident")
		assert.False(t, ok)
	})
}

func TestReceiptParsed(t *testing.T) {
	t.Run("JSON object payload", func(t *testing.T) {
		r := Receipt{TxID: "tx1", Payload: []byte(`{"id":"RES-ABCDEFGH23"}`)}
		m, ok := r.Parsed()
		assert.True(t, ok)
		assert.Equal(t, "RES-ABCDEFGH23", m["id"])
	})

	t.Run("empty payload", func(t *testing.T) {
		r := Receipt{TxID: "tx1"}
		_, ok := r.Parsed()
		assert.False(t, ok)
	})

	t.Run("non-object payload", func(t *testing.T) {
		r := Receipt{TxID: "tx1", Payload: []byte(`"done"`)}
		_, ok := r.Parsed()
		assert.False(t, ok)
	})
}

func TestCallBuilder(t *testing.T) {
	calls := NewCallBuilder("residentschannel", "residentManagement")

	call := calls.Call(FnGetResident, "RES-ABCDEFGH23", "Org1", "RES-ABCDEFGH23")
	assert.Equal(t, "residentschannel", call.Channel)
	assert.Equal(t, "residentManagement", call.Chaincode)
	assert.Equal(t, FnGetResident, call.Function)
	assert.Equal(t, "RES-ABCDEFGH23", call.Identity)
	assert.Equal(t, "Org1", call.Org)
	assert.Equal(t, []string{"RES-ABCDEFGH23"}, call.Args)
}
