package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/fliplot/internal/render"
)

func TestWaitForListen(t *testing.T) {
	tests := []struct {
		name    string
		pending error
		send    bool
		wantErr string
	}{
		{"listen error surfaces", errors.New("listen: address already in use"), true, "address already in use"},
		{"clean exit before listening", nil, true, "stopped before listening"},
		{"timeout", nil, false, "within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := render.NewServer(nil, "test", render.Options{})
			errCh := make(chan error, 1)
			if tt.send {
				errCh <- tt.pending
			}

			start := time.Now()
			err := waitForListen(srv, errCh, 200*time.Millisecond)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
			if tt.send && time.Since(start) > 150*time.Millisecond {
				t.Errorf("start failure took %s, want immediate return", time.Since(start))
			}
		})
	}
}

func TestWaitForListen_Started(t *testing.T) {
	srv := render.NewServer(nil, "test", render.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	if err := waitForListen(srv, errCh, 3*time.Second); err != nil {
		t.Fatalf("waitForListen: %v", err)
	}
	if srv.URL() == "" {
		t.Error("expected a URL once listening")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("ListenAndServe: %v", err)
	}
}
