package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dorm-reservation-backend/config"
)

func TestConfigRows_HidesSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DSN = "host=db password=hunter2"
	cfg.Push.PrivateKey = "private"
	cfg.Push.PublicKey = "public"

	values := map[string]any{}
	for _, row := range configRows(cfg) {
		values[row[0].(string)] = row[1]
	}

	assert.Equal(t, "********", values["database.dsn"])
	assert.Equal(t, "********", values["push.vapid_private_key"])
	assert.Equal(t, true, values["push.enabled"])
}
