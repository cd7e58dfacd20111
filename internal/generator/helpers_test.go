package generator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"alternator-reqgen/pkg/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// dynamoDocument is a cut down DynamoDB service document with the recursive
// AttributeValue shape and the identifier shapes.
const dynamoDocument = `{
  "operations": {
    "PutItem": {"input": {"shape": "PutItemInput"}},
    "DescribeTable": {"input": {"shape": "DescribeTableInput"}},
    "RestoreTableFromBackup": {"input": {"shape": "RestoreTableFromBackupInput"}},
    "DescribeLimits": {}
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
    "DescribeTableInput": {
      "type": "structure",
      "required": ["TableName"],
      "members": {"TableName": {"shape": "TableArn"}}
    },
    "RestoreTableFromBackupInput": {
      "type": "structure",
      "required": ["TargetTableName"],
      "members": {"TargetTableName": {"shape": "TableName"}}
    },
    "TableArn": {"type": "string", "min": 1, "pattern": "[a-zA-Z0-9_.:/-]+"},
    "TableName": {"type": "string", "min": 3, "pattern": "[a-zA-Z0-9_.-]+"},
    "ReturnValue": {"type": "string", "enum": ["NONE", "ALL_OLD"]},
    "PutItemInputAttributeMap": {
      "type": "map",
      "key": {"shape": "AttributeName"},
      "value": {"shape": "AttributeValue"}
    },
    "AttributeName": {"type": "string"},
    "AttributeValue": {
      "type": "structure",
      "members": {
        "S": {"shape": "StringAttributeValue"},
        "BOOL": {"shape": "BooleanAttributeValue"},
        "M": {"shape": "MapAttributeValue"},
        "L": {"shape": "ListAttributeValue"}
      }
    },
    "StringAttributeValue": {"type": "string"},
    "BooleanAttributeValue": {"type": "boolean"},
    "MapAttributeValue": {
      "type": "map",
      "key": {"shape": "AttributeName"},
      "value": {"shape": "AttributeValue"}
    },
    "ListAttributeValue": {"type": "list", "member": {"shape": "AttributeValue"}}
  }
}`

func mustCatalog(t *testing.T, doc string) *registry.Catalog {
	t.Helper()
	cat, err := registry.ParseCatalog([]byte(doc))
	require.NoError(t, err)
	return cat
}

type site struct {
	Path, Shape, Label, Body string
}

// recorder captures every emitted site together with the root body at the
// time of emission.
type recorder struct {
	t     *testing.T
	root  Reference
	sites []site
}

func (r *recorder) emit(path, shape, label string) error {
	body, err := Serialize(r.root.Read())
	require.NoError(r.t, err)
	r.sites = append(r.sites, site{Path: path, Shape: shape, Label: label, Body: body})
	return nil
}

func (r *recorder) labels() []string {
	out := make([]string, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, s.Path+"|"+s.Shape+"|"+s.Label)
	}
	return out
}

func (r *recorder) find(path, label string) (site, bool) {
	for _, s := range r.sites {
		if s.Path == path && s.Label == label {
			return s, true
		}
	}
	return site{}, false
}

// generateFrom builds the seed for shape, runs the generator over it and
// returns the recorder and the holder list.
func generateFrom(t *testing.T, cat *registry.Catalog, opts Options, shape string) (*recorder, *List, Value) {
	t.Helper()
	gen := NewGenerator(cat, opts)
	seed, err := gen.Builder().Build(shape)
	require.NoError(t, err)
	before := Clone(seed)

	holder := NewList(seed)
	root := NewIndexRef(holder, 0, "body")
	rec := &recorder{t: t, root: root}
	require.NoError(t, gen.Generate(shape, root, rec.emit, opts.MaxDepth))
	return rec, holder, before
}
