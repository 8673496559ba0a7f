package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/syncbridge/pkg/errors"
)

func TestArtifactErrorMessage(t *testing.T) {
	err := errors.NewArtifactError(12, 4001, "ReleaseId", "container not visible", nil)
	assert.Contains(t, err.Error(), "project 12")
	assert.Contains(t, err.Error(), "artifact 4001")
	assert.Contains(t, err.Error(), "ReleaseId")
}

func TestArtifactErrorUnwrap(t *testing.T) {
	inner := errors.NewTimeoutError("node poll", "30s", "node never became visible")
	err := errors.WrapArtifact(12, 4001, "ReleaseId", inner)

	assert.True(t, errors.IsArtifactError(err))
	assert.True(t, errors.IsTimeout(err))

	var ae *errors.ArtifactError
	assert.True(t, stderrors.As(err, &ae))
	assert.Equal(t, 4001, ae.ArtifactID)
}

func TestMappingErrorSentinel(t *testing.T) {
	err := errors.NewMappingError(7, "status", "On Hold", "no primary entry")
	assert.True(t, errors.IsMappingUnresolved(err))
	assert.False(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), `"On Hold"`)
}

func TestValidationErrorFieldList(t *testing.T) {
	err := &errors.ValidationError{
		Fields:  []string{"System.Title", "Microsoft.VSTS.Common.Priority"},
		Message: "rejected by tracker",
	}
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "System.Title")
	assert.Contains(t, err.Error(), "Microsoft.VSTS.Common.Priority")
}

func TestAuthenticationErrorSentinel(t *testing.T) {
	err := errors.NewAuthenticationError("remote", "expired token", nil)
	assert.True(t, errors.IsAuthentication(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, errors.WrapArtifact(1, 2, "", nil))
	assert.NoError(t, errors.WrapProject(1, nil))
	assert.NoError(t, errors.WrapValidation("f", nil))
}
