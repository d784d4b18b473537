package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_ShutsDownOnCancel(t *testing.T) {
	setTestConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	serveCmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- serveCmd.RunE(serveCmd, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestServeCmd_StoreError(t *testing.T) {
	setTestConfig(t)
	cfg.Store.Driver = "mysql"

	serveCmd.SetContext(context.Background())
	err := serveCmd.RunE(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
