package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "0 10 * * 1-5"},
		{spec: "*/15 * * * *"},
		{spec: "@daily", wantErr: true},
		{spec: "@every 1h", wantErr: true},
		{spec: "0 10 * *", wantErr: true},
		{spec: "0 0 10 * * 1-5", wantErr: true},
		{spec: "61 * * * *", wantErr: true},
		{spec: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidateSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("error should wrap ErrInvalidSchedule: %v", err)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	s := New(time.UTC)
	noop := func(ctx context.Context) error { return nil }

	if err := s.Add(Job{Name: "publish", Spec: "0 10 * * 1-5", Run: noop}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(Job{Name: "grade", Spec: "0 16 * * 1-5", Run: noop}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add(Job{Name: "bad", Spec: "every day", Run: noop}); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("Add(bad spec) error = %v", err)
	}
	if err := s.Add(Job{Name: "empty", Spec: "@hourly"}); err == nil {
		t.Errorf("Add(nil run) should fail")
	}

	entries := s.Entries()
	if len(entries) != 2 || entries[0].Name != "grade" || entries[1].Name != "publish" {
		t.Fatalf("Entries() = %+v", entries)
	}

	s.Start()
	defer s.Stop(context.Background())
	for _, e := range s.Entries() {
		if e.Next.IsZero() {
			t.Errorf("entry %s has no next run after start", e.Name)
		}
		if e.Next.Location() != time.UTC {
			t.Errorf("entry %s scheduled in %v", e.Name, e.Next.Location())
		}
	}
}

func TestRunAppliesTimeout(t *testing.T) {
	s := New(time.UTC)
	var deadline time.Time
	var hasDeadline bool

	s.run(Job{
		Name:    "probe",
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			deadline, hasDeadline = ctx.Deadline()
			return errors.New("logged, not returned")
		},
	})

	if !hasDeadline || time.Until(deadline) > time.Minute {
		t.Errorf("job context deadline = %v, %v", deadline, hasDeadline)
	}
}
