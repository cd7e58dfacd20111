// internal/models/testcase.go
package models

// TestCase is one generated request: an operation and its serialized body.
type TestCase struct {
	ID      string `yaml:"id" json:"id"`
	Request string `yaml:"request" json:"request"`
	Body    string `yaml:"body" json:"body"`
}

// ResolvedCase is a TestCase annotated with the responses observed from the
// reference (AWS) and candidate (ALT) implementations.
type ResolvedCase struct {
	TestCase  `yaml:",inline"`
	Reference string `yaml:"AWS,omitempty" json:"AWS,omitempty"`
	Candidate string `yaml:"ALT,omitempty" json:"ALT,omitempty"`
}

// Trim drops the responses, leaving the stable regression record.
func (r ResolvedCase) Trim() TestCase {
	return r.TestCase
}

// Bucket is the classification outcome of a resolved case.
type Bucket string

const (
	BucketInvalid Bucket = "invalid"
	BucketOther   Bucket = "other"
	BucketValid   Bucket = "valid"
)

// Buckets lists every bucket in output order.
var Buckets = []Bucket{BucketInvalid, BucketOther, BucketValid}

// UnsupportedCase is the placeholder record written for operations outside the allow-list.
func UnsupportedCase(operation string) TestCase {
	return TestCase{ID: operation, Request: operation, Body: "{}"}
}
