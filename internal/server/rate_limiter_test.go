package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllowsBurst(t *testing.T) {
	bucket := newTokenBucket(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, bucket.allow(), "request %d within burst should pass", i)
	}
	assert.False(t, bucket.allow(), "request beyond burst should be denied")
}

func TestTokenBucketRefills(t *testing.T) {
	bucket := newTokenBucket(2, 50*time.Millisecond)

	assert.True(t, bucket.allow())
	assert.True(t, bucket.allow())
	assert.False(t, bucket.allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, bucket.allow(), "bucket should refill after the interval")
}

func TestTokenBucketSanitizesArguments(t *testing.T) {
	bucket := newTokenBucket(0, 0)

	assert.True(t, bucket.allow())
	assert.False(t, bucket.allow())
}
