package toolerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBareVersionErrorIsInvalidArguments(t *testing.T) {
	err := NewBareVersionError("12")
	assert.Equal(t, KindInvalidArguments, err.Kind())
	assert.Equal(t, InvalidArguments, err.Kind().ExitCode())
	assert.Contains(t, err.Error(), "node@12")
}

func TestExecutableNotFoundSuggestsClosestMatch(t *testing.T) {
	err := NewExecutableNotFoundError("nod", []string{"node", "npm", "yarn"})
	assert.Equal(t, "node", err.Suggested)
	assert.Contains(t, err.Error(), "did you mean")
}

func TestExecutableNotFoundNoSuggestionWhenTooFar(t *testing.T) {
	err := NewExecutableNotFoundError("zzzzzzzzzz", []string{"node", "npm", "yarn"})
	assert.Empty(t, err.Suggested)
}

func TestExitCodeMapping(t *testing.T) {
	cases := map[Kind]ExitCode{
		KindUnknown:            UnknownError,
		KindInvalidArguments:   InvalidArguments,
		KindNoVersionMatch:     NoVersionMatch,
		KindNetwork:            ExitNetworkError,
		KindFileSystem:         ExitFileSystemError,
		KindConfiguration:      ExitConfigurationError,
		KindEnvironment:        ExitEnvironmentError,
		KindExecution:          ExecutionFailure,
		KindExecutableNotFound: ExecutableNotFound,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.ExitCode())
	}
}
