package gcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("EVENTREPORT_TEST_SET", "value")
	assert.Equal(t, "value", GetEnv("EVENTREPORT_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("EVENTREPORT_TEST_UNSET", "fallback"))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("EVENTREPORT_TIMEOUT", "45s")
	assert.Equal(t, 45*time.Second, GetEnvDuration("EVENTREPORT_TIMEOUT", time.Second))

	t.Setenv("EVENTREPORT_TIMEOUT", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("EVENTREPORT_TIMEOUT", time.Second))

	t.Setenv("EVENTREPORT_TIMEOUT", "-5s")
	assert.Equal(t, time.Second, GetEnvDuration("EVENTREPORT_TIMEOUT", time.Second))

	assert.Equal(t, time.Minute, GetEnvDuration("EVENTREPORT_TIMEOUT_UNSET", time.Minute))
}
