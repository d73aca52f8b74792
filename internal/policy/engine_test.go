package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyAllows(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
		"user_id":      "user-1",
		"session_uuid": "",
		"message":      "관세율 8471.30 문의드립니다",
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}

func TestDefaultPolicyBlocksEmptyMessage(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
		"user_id": "user-1",
		"message": "",
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestCustomPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, `
package chat_policy

default decision = "allow"

decision = "block" {
	input.user_id == "banned"
}
`)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
		"user_id": "banned",
		"message": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)

	decision, _, err = engine.Evaluate(ctx, map[string]interface{}{
		"user_id": "ok",
		"message": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}
