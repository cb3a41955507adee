//go:build unit

package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	t.Run("delivers the result once finished", func(t *testing.T) {
		// Prepare
		release := make(chan struct{})

		// Execute
		tk := Run(func() (int, error) {
			<-release
			return 42, nil
		})

		// Check
		select {
		case <-tk.Done():
			assert.Fail(t, "done before the operation finished")
		default:
		}
		close(release)
		res, err := tk.Wait()
		assert.NoError(t, err, "no error")
		assert.Equal(t, 42, res, "result delivered")
		select {
		case <-tk.Done():
		case <-time.After(time.Second):
			assert.Fail(t, "done channel not closed")
		}
	})

	t.Run("delivers errors", func(t *testing.T) {
		// Prepare
		boom := errors.New("boom")

		// Execute
		_, err := Run(func() (string, error) { return "", boom }).Wait()

		// Check
		assert.ErrorIs(t, err, boom, "error delivered")
	})
}
