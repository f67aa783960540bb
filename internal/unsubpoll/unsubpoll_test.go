package unsubpoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWantsUnsubscribe(t *testing.T) {
	yes := []string{
		"Unsubscribe",
		"Re: Saw your post - UNSUBSCRIBE me",
		"please remove me from this list",
		"opt out",
		"stop emailing me!!",
	}
	for _, s := range yes {
		assert.True(t, wantsUnsubscribe(s), s)
	}

	no := []string{
		"Re: Saw your post on hn",
		"Interested, tell me more",
		"",
	}
	for _, s := range no {
		assert.False(t, wantsUnsubscribe(s), s)
	}
}

func TestRunOnceRequiresConfig(t *testing.T) {
	p := &Poller{}
	_, err := p.RunOnce(nil, nil, 0)
	assert.Error(t, err)
}
