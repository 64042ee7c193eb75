package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/nestline/nestline/pkg/infra/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost(id string, timestamp int64) *post.Post {
	return &post.Post{
		ID:          id,
		DisplayName: "Ada Lovelace",
		Handle:      "@ada",
		Content:     "first actual program",
		Timestamp:   timestamp,
		Reactions:   post.EmptyReactions(),
	}
}

func TestRedisRepository_GetNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	mock.ExpectGet("post:missing").RedisNil()

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, post.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_SaveAndGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	p := testPost("abc123", 1690000000000)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	mock.ExpectSet("post:abc123", string(raw), 0).SetVal("OK")
	mock.ExpectGet("post:abc123").SetVal(string(raw))

	require.NoError(t, repo.Save(context.Background(), p))

	got, err := repo.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, p.Content, got.Content)
	assert.Equal(t, p.Timestamp, got.Timestamp)
	assert.Len(t, got.Reactions, len(post.ReactionEmojis))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_DeleteNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	mock.ExpectDel("post:gone").SetVal(0)

	err := repo.Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, post.ErrNotFound)
}

func TestRedisRepository_ListNewestFirst(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	older, _ := json.Marshal(testPost("older", 1690000000000))
	newer, _ := json.Marshal(testPost("newer", 1690000500000))

	mock.ExpectScan(0, "post:*", 100).SetVal([]string{"post:older", "post:newer"}, 0)
	mock.ExpectMGet("post:older", "post:newer").SetVal([]interface{}{string(older), string(newer)})

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].ID)
	assert.Equal(t, "older", posts[1].ID)
}

func TestRedisRepository_ListSkipsCorruptRecords(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	valid, _ := json.Marshal(testPost("ok", 1690000000000))

	mock.ExpectScan(0, "post:*", 100).SetVal([]string{"post:ok", "post:bad"}, 0)
	mock.ExpectMGet("post:ok", "post:bad").SetVal([]interface{}{string(valid), "{not json"})

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "ok", posts[0].ID)
}

func TestRedisRepository_ImageRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	data := []byte{0x89, 0x50, 0x4e, 0x47}

	mock.ExpectSet("postimg:abc123", data, 0).SetVal("OK")
	mock.ExpectSet("postimg:abc123:type", "image/png", 0).SetVal("OK")
	mock.ExpectGet("postimg:abc123").SetVal(string(data))
	mock.ExpectGet("postimg:abc123:type").SetVal("image/png")

	require.NoError(t, repo.SaveImage(context.Background(), "abc123", &post.Image{
		Data:     data,
		MimeType: "image/png",
	}))

	img, err := repo.GetImage(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestRedisRepository_ImageNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := storage.NewRedisRepositoryWithClient(client, logrus.New())

	mock.ExpectGet("postimg:none").RedisNil()

	_, err := repo.GetImage(context.Background(), "none")
	assert.ErrorIs(t, err, post.ErrImageNotFound)
}
