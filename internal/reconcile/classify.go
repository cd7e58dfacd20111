package reconcile

import (
	"encoding/json"
	"strings"

	"alternator-reqgen/internal/common/config"
	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/models"
)

// Classifier buckets a resolved case by the reference response.
type Classifier struct {
	markers   []string
	typeField string
}

func NewClassifier(markers []string, typeField string) *Classifier {
	return &Classifier{markers: markers, typeField: typeField}
}

func ClassifierFromConfig(cfg config.ClassificationConfig) *Classifier {
	return NewClassifier(cfg.ValidationMarkers, cfg.ErrorTypeField)
}

// Classify returns invalid when the response carries a validation marker,
// other when it is a JSON object with the error type field, valid otherwise.
// A response that is not JSON and carries no marker is RESPONSE_MALFORMED.
func (c *Classifier) Classify(rc models.ResolvedCase) (models.Bucket, error) {
	for _, m := range c.markers {
		if strings.Contains(rc.Reference, m) {
			return models.BucketInvalid, nil
		}
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(rc.Reference), &parsed); err != nil {
		return "", apperrors.NewResponseMalformedError(rc.ID, err)
	}
	if obj, ok := parsed.(map[string]interface{}); ok {
		if _, typed := obj[c.typeField]; typed {
			return models.BucketOther, nil
		}
	}
	return models.BucketValid, nil
}
