package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issueRequest struct {
	Owner string `json:"owner" validate:"required,max=100"`
	Repo  string `json:"repo" validate:"required"`
	Title string `json:"title" validate:"required"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(issueRequest{Owner: "taitfuller", Repo: "feedr", Title: "Crash on login"}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(issueRequest{Owner: "taitfuller"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["repo"])
	assert.Equal(t, "is required", fields["title"])
	assert.NotContains(t, fields, "owner")
	assert.Contains(t, err.Error(), "field 'repo' is required")
}

func TestValidate_Max(t *testing.T) {
	err := Validate(issueRequest{Owner: strings.Repeat("x", 101), Repo: "r", Title: "t"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 100 characters", valErr.Fields()["owner"])
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("platform", "iOS", "oneof=iOS Android"))

	err := Var("platform", "Windows", "oneof=iOS Android")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be one of: iOS Android", valErr.Fields()["platform"])
}
