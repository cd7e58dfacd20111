// test/e2e/e2e_test.go
package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alternator-reqgen/internal/cli"
	"alternator-reqgen/internal/models"
	"alternator-reqgen/internal/reconcile"
)

const serviceDocument = `{
  "metadata": {"protocol": "json", "serviceId": "DynamoDB"},
  "operations": {
    "PutItem": {"name": "PutItem", "input": {"shape": "PutItemInput"}},
    "DescribeTable": {"name": "DescribeTable", "input": {"shape": "DescribeTableInput"}},
    "RestoreTableFromBackup": {"name": "RestoreTableFromBackup", "input": {"shape": "RestoreTableFromBackupInput"}}
  },
  "shapes": {
    "PutItemInput": {
      "type": "structure",
      "required": ["TableName", "Item"],
      "members": {
        "TableName": {"shape": "TableArn"},
        "Item": {"shape": "PutItemInputAttributeMap"},
        "ReturnValues": {"shape": "ReturnValue"}
      }
    },
    "DescribeTableInput": {"type": "structure", "required": ["TableName"], "members": {"TableName": {"shape": "TableArn"}}},
    "RestoreTableFromBackupInput": {"type": "structure", "required": ["TargetTableName"], "members": {"TargetTableName": {"shape": "TableName"}}},
    "TableArn": {"type": "string", "max": 1024, "min": 1, "pattern": "[a-zA-Z0-9_.:/-]+"},
    "TableName": {"type": "string", "max": 255, "min": 3, "pattern": "[a-zA-Z0-9_.-]+"},
    "ReturnValue": {"type": "string", "enum": ["NONE", "ALL_OLD", "UPDATED_OLD", "ALL_NEW", "UPDATED_NEW"]},
    "PutItemInputAttributeMap": {"type": "map", "key": {"shape": "AttributeName"}, "value": {"shape": "AttributeValue"}},
    "AttributeName": {"type": "string", "max": 65535},
    "AttributeValue": {
      "type": "structure",
      "members": {
        "S": {"shape": "StringAttributeValue"},
        "N": {"shape": "NumberAttributeValue"},
        "BOOL": {"shape": "BooleanAttributeValue"},
        "M": {"shape": "MapAttributeValue"},
        "L": {"shape": "ListAttributeValue"}
      },
      "union": true
    },
    "StringAttributeValue": {"type": "string"},
    "NumberAttributeValue": {"type": "string"},
    "BooleanAttributeValue": {"type": "boolean"},
    "MapAttributeValue": {"type": "map", "key": {"shape": "AttributeName"}, "value": {"shape": "AttributeValue"}},
    "ListAttributeValue": {"type": "list", "member": {"shape": "AttributeValue"}}
  }
}`

const configYAML = `app:
  name: reqgen-e2e
store:
  backend: file
logging:
  level: warn
metrics:
  textfile: metrics.prom
`

const (
	validationReply = `{"__type":"com.amazon.coral.validate#ValidationException","message":"1 validation error detected"}`
	notFoundReply   = `{"__type":"com.amazonaws.dynamodb.v20120810#ResourceNotFoundException","message":"Requested resource not found"}`
)

type workspace struct {
	t   *testing.T
	dir string
	cfg string
	ws  *reconcile.FileWorkspace
}

func newWorkspace(t *testing.T) *workspace {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "generator"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generator", "service-2.json"), []byte(serviceDocument), 0o644))
	cfg := filepath.Join(dir, "reqgen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(configYAML), 0o644))
	return &workspace{t: t, dir: dir, cfg: cfg, ws: reconcile.NewFileWorkspace()}
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

func (w *workspace) reqgen(args ...string) int {
	w.t.Helper()
	return cli.ExecuteArgs(append(args, "--config", w.cfg, "--workdir", w.dir))
}

func (w *workspace) cases(name string) []models.TestCase {
	w.t.Helper()
	out, err := w.ws.ReadCases(w.path(name))
	require.NoError(w.t, err)
	return out
}

func (w *workspace) resolved(name string) []models.ResolvedCase {
	w.t.Helper()
	out, err := w.ws.ReadResolved(w.path(name))
	require.NoError(w.t, err)
	return out
}

func (w *workspace) snapshot(names ...string) map[string]string {
	w.t.Helper()
	out := make(map[string]string, len(names))
	for _, n := range names {
		raw, err := os.ReadFile(w.path(n))
		require.NoError(w.t, err)
		out[n] = string(raw)
	}
	return out
}

// referenceAnswer stands in for the reference service.
func referenceAnswer(tc models.TestCase) string {
	switch {
	case !strings.HasSuffix(tc.ID, "-unexpected_null") && strings.Contains(tc.ID, "-body.Item"):
		return `{}`
	case tc.Request == "DescribeTable" && strings.HasSuffix(tc.ID, "-unexpected_null"):
		return notFoundReply
	default:
		return validationReply
	}
}

func TestFullPipeline(t *testing.T) {
	w := newWorkspace(t)

	t.Log("🚀 generating corpus and dispatching to the reference service")
	require.Equal(t, 0, w.reqgen("run"))

	generated := w.cases("generator/generated.yaml")
	require.NotEmpty(t, generated)
	assert.Equal(t, []models.TestCase{
		{ID: "RestoreTableFromBackup", Request: "RestoreTableFromBackup", Body: "{}"},
	}, w.cases("test_automated_unsupported_yet.yaml"))
	for _, tc := range generated {
		assert.NotEqual(t, "RestoreTableFromBackup", tc.Request)
	}
	assert.Equal(t, generated, w.cases("test_generated_AWS.yaml"))
	assert.Empty(t, w.cases("test_automated_invalid_payload.yaml"))
	assert.Empty(t, w.cases("test_automated_valid_payload.yaml"))

	ids := map[string]bool{}
	for _, tc := range generated {
		require.False(t, ids[tc.ID], "duplicate id %s", tc.ID)
		ids[tc.ID] = true
	}
	assert.True(t, ids["PutItem-body-PutItemInput-Item_missing"])
	assert.True(t, ids["PutItem-body.ReturnValues-ReturnValue-invalid_enum"])
	assert.True(t, ids["PutItem-body.Item.key-AttributeName-invalid_attr_name"])
	assert.True(t, ids["DescribeTable-body.TableName-TableArn-invalid_table_name"])

	var replies []models.ResolvedCase
	for _, tc := range generated {
		replies = append(replies, models.ResolvedCase{TestCase: tc, Reference: referenceAnswer(tc)})
	}
	require.NoError(t, w.ws.WriteResolved(w.path("test_generated_AWS.resp.yaml"), replies))

	t.Log("🔁 merging reference replies")
	require.Equal(t, 0, w.reqgen("run"))
	assert.Empty(t, w.cases("test_generated_AWS.yaml"))
	pending := w.resolved("test_generated_ALT.yaml")
	require.Len(t, pending, len(generated))

	for i := range pending {
		pending[i].Candidate = `{}`
	}
	require.NoError(t, w.ws.WriteResolved(w.path("test_generated_ALT.resp.yaml"), pending))

	t.Log("🧮 classifying candidate replies")
	require.Equal(t, 0, w.reqgen("reconcile"))

	invalid := w.resolved("generator/full_invalid_payload.yaml")
	valid := w.resolved("generator/full_valid_payload.yaml")
	other := w.resolved("generator/full_other_errors.yaml")
	assert.NotEmpty(t, invalid)
	assert.NotEmpty(t, valid)
	assert.NotEmpty(t, other)

	bucketOf := map[string]string{}
	for name, set := range map[string][]models.ResolvedCase{"invalid": invalid, "valid": valid, "other": other} {
		for _, rc := range set {
			prev, dup := bucketOf[rc.ID]
			assert.False(t, dup, "%s in both %s and %s", rc.ID, prev, name)
			bucketOf[rc.ID] = name
		}
	}
	assert.Len(t, bucketOf, len(generated))
	assert.Len(t, w.cases("test_automated_invalid_payload.yaml"), len(invalid))
	assert.Len(t, w.cases("test_automated_valid_payload.yaml"), len(valid))
	assert.Equal(t, "invalid", bucketOf["PutItem-body-PutItemInput-Item_missing"])

	t.Log("♻️ re-running with nothing new")
	files := []string{
		"generator/generated.yaml", "generator/AWS_history.yaml",
		"test_generated_AWS.yaml", "test_generated_ALT.yaml",
		"generator/full_invalid_payload.yaml", "generator/full_valid_payload.yaml", "generator/full_other_errors.yaml",
		"test_automated_invalid_payload.yaml", "test_automated_valid_payload.yaml",
	}
	before := w.snapshot(files...)
	require.Equal(t, 0, w.reqgen("run"))
	assert.Equal(t, before, w.snapshot(files...))

	metrics, err := os.ReadFile(w.path("metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "reqgen_cases_generated_total")
	assert.Contains(t, string(metrics), "reqgen_cases_classified_total")

	t.Log("✅ pipeline complete")
}

func TestGenerateIsDeterministic(t *testing.T) {
	w := newWorkspace(t)

	require.Equal(t, 0, w.reqgen("generate"))
	first := w.snapshot("generator/generated.yaml")
	require.Equal(t, 0, w.reqgen("generate"))
	assert.Equal(t, first, w.snapshot("generator/generated.yaml"))
}

func TestUnsupportedOnly(t *testing.T) {
	w := newWorkspace(t)

	require.Equal(t, 0, w.reqgen("unsupported"))
	assert.Len(t, w.cases("test_automated_unsupported_yet.yaml"), 1)
	_, err := os.Stat(w.path("generator/generated.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestExitCodes(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.Remove(w.path("generator/service-2.json")))
	assert.Equal(t, 3, w.reqgen("generate"), "missing schema")

	require.NoError(t, os.WriteFile(w.path("generator/service-2.json"), []byte(`{"operations": {}}`), 0o644))
	assert.Equal(t, 3, w.reqgen("generate"), "schema without shapes")

	require.NoError(t, os.WriteFile(w.path("test_generated_ALT.resp.yaml"),
		[]byte("- id: x\n  request: PutItem\n  body: '{}'\n  AWS: not json\n"), 0o644))
	assert.Equal(t, 5, w.reqgen("reconcile"), "malformed reply")

	bad := filepath.Join(w.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("generator:\n  max_depth: -1\n"), 0o644))
	assert.Equal(t, 2, cli.ExecuteArgs([]string{"generate", "--config", bad, "--workdir", w.dir}), "invalid config")
}
