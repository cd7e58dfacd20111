package generator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/common/logger"
	"alternator-reqgen/internal/models"
)

func TestEmitter_RejectsDuplicateID(t *testing.T) {
	holder := NewList(Object{"Name": "x"})
	e := NewEmitter()
	e.Begin("PutItem", NewIndexRef(holder, 0, "body"))

	require.NoError(t, e.Emit("body", "PutItemInput", "unexpected_null"))
	err := e.Emit("body", "PutItemInput", "unexpected_null")

	assert.ErrorIs(t, err, apperrors.ErrDuplicateCaseID)
	require.Len(t, e.Cases(), 1)
	assert.Equal(t, models.TestCase{
		ID:      "PutItem-body-PutItemInput-unexpected_null",
		Request: "PutItem",
		Body:    `{"Name":"x"}`,
	}, e.Cases()[0])
}

func TestEmitter_OnEmitHook(t *testing.T) {
	holder := NewList("x")
	e := NewEmitter()
	var ops []string
	e.OnEmit(func(op string) { ops = append(ops, op) })

	e.Begin("Scan", NewIndexRef(holder, 0, "body"))
	require.NoError(t, e.Emit("body", "S", "a"))
	e.Begin("Query", NewIndexRef(holder, 0, "body"))
	require.NoError(t, e.Emit("body", "S", "a"))

	assert.Equal(t, []string{"Scan", "Query"}, ops)
}

func newTestCorpus(t *testing.T, supported []string) *Corpus {
	return NewCorpus(mustCatalog(t, dynamoDocument), DefaultOptions(), supported, logger.NewTestLogger(t))
}

func TestCorpus_UnsupportedOperations(t *testing.T) {
	c := newTestCorpus(t, []string{"PutItem", "DescribeTable", "DescribeLimits"})

	res, err := c.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.TestCase{
		{ID: "RestoreTableFromBackup", Request: "RestoreTableFromBackup", Body: "{}"},
	}, res.Unsupported)
	assert.Equal(t, []string{"DescribeLimits"}, res.Skipped)

	requests := map[string]int{}
	for _, tc := range res.Cases {
		requests[tc.Request]++
	}
	assert.NotContains(t, requests, "RestoreTableFromBackup")
	assert.Positive(t, requests["PutItem"])
	assert.Positive(t, requests["DescribeTable"])

	// operations are visited in name order
	assert.Equal(t, "DescribeTable", res.Cases[0].Request)
}

func TestCorpus_UniqueIDs(t *testing.T) {
	res, err := newTestCorpus(t, []string{"PutItem", "DescribeTable"}).Generate(context.Background())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, tc := range res.Cases {
		assert.False(t, seen[tc.ID], tc.ID)
		seen[tc.ID] = true
	}
}

func TestCorpus_Deterministic(t *testing.T) {
	supported := []string{"PutItem", "DescribeTable"}
	first, err := newTestCorpus(t, supported).Generate(context.Background())
	require.NoError(t, err)
	second, err := newTestCorpus(t, supported).Generate(context.Background())
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestCorpus_DescribeTableCases(t *testing.T) {
	res, err := newTestCorpus(t, []string{"DescribeTable"}).Generate(context.Background())
	require.NoError(t, err)

	byID := map[string]string{}
	for _, tc := range res.Cases {
		byID[tc.ID] = tc.Body
	}
	assert.Equal(t, `{}`, byID["DescribeTable-body-DescribeTableInput-TableName_missing"])
	assert.Equal(t, `{"TableName":null}`, byID["DescribeTable-body-DescribeTableInput-TableName_null"])
	assert.Equal(t, `{"TableName":"+@"}`, byID["DescribeTable-body.TableName-TableArn-invalid_table_name"])
	assert.Equal(t, `{"TableName":""}`, byID["DescribeTable-body.TableName-TableArn-empty_string"])
	assert.Equal(t, `{"TableName":"!@#$%^&*"}`, byID["DescribeTable-body.TableName-TableArn-forbidden_string"])
}

func TestCorpus_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCorpus(t, []string{"PutItem"}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
