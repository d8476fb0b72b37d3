package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeScripter answers every script call with a fixed reply and records the
// last keys and args.
type fakeScripter struct {
	reply int64
	err   error
	keys  []string
	args  []interface{}
}

func (f *fakeScripter) result(ctx context.Context, keys []string, args []interface{}) *redis.Cmd {
	f.keys, f.args = keys, args
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(f.reply)
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.result(ctx, keys, args)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.result(ctx, keys, args)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.result(ctx, keys, args)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.result(ctx, keys, args)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisLimiterKeyAndArgs(t *testing.T) {
	fake := &fakeScripter{reply: 1}
	limiter := NewRedisLimiter(fake)
	if !limiter.Allow("connect:p1", 10, time.Minute) {
		t.Fatalf("expected admission")
	}
	if len(fake.keys) != 1 || fake.keys[0] != "taxpro:ratelimit:connect:p1" {
		t.Fatalf("unexpected keys %v", fake.keys)
	}
	if len(fake.args) != 3 || fake.args[0] != int64(60000) || fake.args[1] != 10 {
		t.Fatalf("unexpected args %v", fake.args)
	}
	first := fake.args[2]
	limiter.Allow("connect:p1", 10, time.Minute)
	if fake.args[2] == first {
		t.Fatalf("each request needs its own window member")
	}
}

func TestRedisLimiterRejectsAndFailsOpen(t *testing.T) {
	fake := &fakeScripter{reply: 0}
	limiter := NewRedisLimiter(fake)
	if limiter.Allow("apply:j:p", 3, time.Minute) {
		t.Fatalf("expected rejection when the window is full")
	}
	fake.err = errors.New("connection refused")
	if !limiter.Allow("apply:j:p", 3, time.Minute) {
		t.Fatalf("expected fail-open when redis errors")
	}
	if !limiter.Allow("", 3, time.Minute) {
		t.Fatalf("empty keys are never limited")
	}
}
