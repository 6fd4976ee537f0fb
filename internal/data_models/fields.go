package dto

import (
	"bytes"
	"encoding/json"

	apperrors "taskboard.com/taskboard/internal/errors"
	"taskboard.com/taskboard/internal/policy"
)

var jsonNull = []byte("null")

// OptionalString tells an absent field apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Tags accepts either a comma separated string or a list of strings.
type Tags struct {
	Set    bool
	Values []string
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	t.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		t.Values = []string{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		t.Values = policy.SplitTags(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return apperrors.ErrInvalidTags
	}
	t.Values = list
	return nil
}
