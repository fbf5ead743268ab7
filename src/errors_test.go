package sal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgrammingErrorMessage(t *testing.T) {
	err := &ProgrammingError{Msg: "bad index"}
	assert.Equal(t, "sal: programming error: bad index", err.Error())
}

func TestFatalErrorWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("file not found")
	err := &FatalError{Op: "LoadSceneConfig", Err: underlying}
	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "LoadSceneConfig")
}
