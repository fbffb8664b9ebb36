package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestDecodeOptions(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    []string
		wantErr bool
	}{
		{"canonical array", `["Paris","London","Berlin"]`, []string{"Paris", "London", "Berlin"}, false},
		{"legacy double-encoded", `"[\"True\",\"False\"]"`, []string{"True", "False"}, false},
		{"empty array", `[]`, []string{}, false},
		{"object payload", `{"a":"b"}`, nil, true},
		{"number payload", `42`, nil, true},
		{"string that is not JSON", `"not json"`, nil, true},
		{"mixed-type array", `["A",2]`, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{Options: datatypes.JSON([]byte(tc.payload))}
			got, err := q.DecodeOptions()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeOptions_EmptyPayload(t *testing.T) {
	q := Question{}
	_, err := q.DecodeOptions()
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestQuizTotalPoints(t *testing.T) {
	quiz := Quiz{Questions: []QuizQuestion{
		{Points: 1.0},
		{Points: 2.5},
		{Points: 0.5},
	}}
	assert.Equal(t, 4.0, quiz.TotalPoints())
}
