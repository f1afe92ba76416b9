package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"adagency/internal/app/redis"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_HitAndMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redis.NewFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("catalog:services:all").SetVal(`[{"id":1}]`)
	mock.ExpectGet("catalog:resources:all").RedisNil()

	val, ok, err := c.Get(ctx, "catalog:services:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(val))

	_, ok, err = c.Get(ctx, "catalog:resources:all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redis.NewFromClient(db)

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))

	_, ok, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSetEXAndDel(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redis.NewFromClient(db)
	ctx := context.Background()
	payload := []byte(`[]`)

	mock.ExpectSetEX("catalog:services:all", payload, time.Hour).SetVal("OK")
	mock.ExpectDel("catalog:services:all", "catalog:services:available").SetVal(2)

	require.NoError(t, c.SetEX(ctx, "catalog:services:all", payload, time.Hour))
	require.NoError(t, c.Del(ctx, "catalog:services:all", "catalog:services:available"))
	require.NoError(t, c.Del(ctx))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJWTBlacklist(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redis.NewFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("adagency.jwt.token").RedisNil()
	mock.ExpectSet("adagency.jwt.token", "1", time.Hour).SetVal("OK")
	mock.ExpectGet("adagency.jwt.token").SetVal("1")

	listed, err := c.IsJWTBlacklisted(ctx, "token")
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, c.WriteJWTToBlacklist(ctx, "token", time.Hour))

	listed, err = c.IsJWTBlacklisted(ctx, "token")
	require.NoError(t, err)
	assert.True(t, listed)

	require.NoError(t, mock.ExpectationsWereMet())
}
