package index

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smukkama/weather-summary/internal/aggregation"
)

// fakeHash is an in-memory stand-in for the Redis hash commands.
type fakeHash struct {
	hashes map[string]map[string]string
	failOn string
}

func newFakeHash() *fakeHash {
	return &fakeHash{hashes: make(map[string]map[string]string)}
}

func (f *fakeHash) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.failOn == "hset" {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (f *fakeHash) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	v, ok := f.hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeHash) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	out := make(map[string]string)
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeHash) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			delete(f.hashes, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeHash) Rename(ctx context.Context, key, newkey string) *redis.StatusCmd {
	h, ok := f.hashes[key]
	if !ok {
		return redis.NewStatusResult("", errors.New("ERR no such key"))
	}
	f.hashes[newkey] = h
	delete(f.hashes, key)
	return redis.NewStatusResult("OK", nil)
}

func floatPtr(v float64) *float64 { return &v }

func TestStoreReplaceAndGet(t *testing.T) {
	ctx := context.Background()
	fake := newFakeHash()
	s := newStore(fake, "")

	first := aggregation.DailyIndex{
		"2024-01-15": {IsValid: true, DataPointCount: 288, HighLow: [2]float64{33.1, 26.2}, TempHigh: 33.1, TempLow: 26.2, TempDeviation: floatPtr(1.5)},
		"2024-01-16": {IsValid: false, DataPointCount: 12},
	}
	require.NoError(t, s.Replace(ctx, first))

	entry, err := s.Get(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, first["2024-01-15"], *entry)

	second := aggregation.DailyIndex{
		"2024-01-17": {IsValid: true, DataPointCount: 240},
	}
	require.NoError(t, s.Replace(ctx, second))

	_, err = s.Get(ctx, "2024-01-15")
	assert.True(t, errors.Is(err, ErrNotFound), "stale date must not survive a replace")

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, all)
	assert.NotContains(t, fake.hashes, DefaultKey+":staging")
}

func TestStoreReplaceEmptyClears(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeHash(), "custom:index")

	require.NoError(t, s.Replace(ctx, aggregation.DailyIndex{"2024-01-15": {DataPointCount: 1}}))
	require.NoError(t, s.Replace(ctx, aggregation.DailyIndex{}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreWriteUsesResultIndex(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeHash(), "")
	assert.Equal(t, "index", s.Name())

	res := &aggregation.Result{Index: aggregation.DailyIndex{"2024-02-01": {IsValid: true, DataPointCount: 250}}}
	require.NoError(t, s.Write(ctx, "run-1", res))

	entry, err := s.Get(ctx, "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, 250, entry.DataPointCount)
}

func TestStoreWriteError(t *testing.T) {
	fake := newFakeHash()
	fake.failOn = "hset"
	s := newStore(fake, "")

	err := s.Replace(context.Background(), aggregation.DailyIndex{"2024-01-15": {}})
	assert.ErrorContains(t, err, "connection refused")
}
