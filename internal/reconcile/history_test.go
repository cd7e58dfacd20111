package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alternator-reqgen/internal/models"
)

func reply(id, op, body, aws string) models.ResolvedCase {
	return models.ResolvedCase{
		TestCase:  models.TestCase{ID: id, Request: op, Body: body},
		Reference: aws,
	}
}

func TestHistory_MergeLaterWins(t *testing.T) {
	h := NewHistory()
	n := h.Merge([]models.ResolvedCase{
		reply("a", "PutItem", `{}`, "first"),
		reply("b", "GetItem", `{}`, "other"),
		reply("c", "PutItem", `{}`, "second"),
	})

	assert.Equal(t, 3, n)
	assert.Equal(t, 2, h.Len())
	resp, ok := h.Lookup("PutItem", `{}`)
	assert.True(t, ok)
	assert.Equal(t, "second", resp)
	assert.Equal(t, []string{"GetItem", "PutItem"}, h.Operations())

	_, ok = h.Lookup("Scan", `{}`)
	assert.False(t, ok)
}

func TestHistory_MergeHistory(t *testing.T) {
	h := HistoryFrom(map[string]map[string]string{
		"PutItem": {"a": "1", "b": "2"},
	})
	other := HistoryFrom(map[string]map[string]string{
		"PutItem": {"b": "3"},
		"Scan":    {"c": "4"},
		"Empty":   nil,
	})

	assert.Equal(t, 2, h.MergeHistory(other))
	assert.Equal(t, map[string]map[string]string{
		"PutItem": {"a": "1", "b": "3"},
		"Scan":    {"c": "4"},
	}, h.Map())
}

func TestHistory_MapIsACopy(t *testing.T) {
	h := HistoryFrom(map[string]map[string]string{"PutItem": {"a": "1"}})
	m := h.Map()
	m["PutItem"]["a"] = "changed"

	resp, _ := h.Lookup("PutItem", "a")
	assert.Equal(t, "1", resp)
}
