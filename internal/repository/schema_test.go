package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"users", "properties", "messages", "notifications", "audit_log"} {
		require.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	require.Contains(t, schemaSQL, "CHECK (sender_id <> receiver_id)")
}
