package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"shortlink/pkg/platform/sentinel"
)

func TestRunConcurrentBucketsOutcomes(t *testing.T) {
	result := RunConcurrent(8, func(idx int) error {
		switch idx % 4 {
		case 0:
			return nil
		case 1:
			return fmt.Errorf("link %d: %w", idx, sentinel.ErrAlreadyUsed)
		case 2:
			return sentinel.ErrNotFound
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(2), result.Successes)
	assert.Equal(t, int32(2), result.Conflicts)
	assert.Equal(t, int32(2), result.NotFounds)
	assert.Equal(t, int32(2), result.Errors)
	assert.Equal(t, int32(8), result.Total())
}

func TestRunConcurrentCollectKeepsEveryError(t *testing.T) {
	successes, errs := RunConcurrentCollect(5, func(idx int) error {
		if idx == 0 {
			return nil
		}
		return fmt.Errorf("call %d: %w", idx, sentinel.ErrConflict)
	})

	assert.Equal(t, int32(1), successes)
	assert.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	}
}
