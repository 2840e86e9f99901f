package contact

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStorage(db)
	ctx := context.Background()
	end := time.UnixMilli(1748779200000)

	mock.ExpectGet("contactFormCooldown:v1").SetVal(strconv.FormatInt(end.UnixMilli(), 10))
	got, ok, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, end.Equal(got))

	mock.ExpectGet("contactFormCooldown:v2").RedisNil()
	_, ok, err = store.Load(ctx, "v2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("contactFormCooldown:v3").SetVal("garbage")
	_, ok, err = store.Load(ctx, "v3")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("contactFormCooldown:v4").SetErr(errors.New("connection refused"))
	_, _, err = store.Load(ctx, "v4")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_SaveAndClear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStorage(db)
	ctx := context.Background()
	end := time.UnixMilli(1748779200000)

	mock.ExpectSet("contactFormCooldown:v1", "1748779200000", 20*time.Minute).SetVal("OK")
	mock.ExpectDel("contactFormCooldown:v1").SetVal(1)

	require.NoError(t, store.Save(ctx, "v1", end, 20*time.Minute))
	require.NoError(t, store.Clear(ctx, "v1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_Reserve(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStorage(db)
	ctx := context.Background()
	end := time.UnixMilli(1748779200000)

	mock.ExpectSetNX("contactFormCooldown:v1", "1748779200000", 20*time.Minute).SetVal(true)
	mock.ExpectSetNX("contactFormCooldown:v1", "1748779200000", 20*time.Minute).SetVal(false)

	ok, err := store.Reserve(ctx, "v1", end, 20*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "v1", end, 20*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
