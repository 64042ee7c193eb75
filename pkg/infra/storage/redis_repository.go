package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nestline/nestline/pkg/domain/post"
	"github.com/sirupsen/logrus"
)

const (
	PostKeyPattern      = "post:%s"
	PostScanPattern     = "post:*"
	ImageKeyPattern     = "postimg:%s"
	ImageTypeKeyPattern = "postimg:%s:type"

	scanBatchSize = 100
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

type redisRepository struct {
	client  *redis.Client
	breaker Breaker
	logger  *logrus.Logger
}

func NewRedisRepository(config Config, logger *logrus.Logger) (post.Repository, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return &redisRepository{
		client:  client,
		breaker: NewBreaker("post_storage", 30*time.Second, 5),
		logger:  logger,
	}, nil
}

// NewRedisRepositoryWithClient wires an existing client, used by tests.
func NewRedisRepositoryWithClient(client *redis.Client, logger *logrus.Logger) post.Repository {
	return &redisRepository{
		client:  client,
		breaker: noopBreaker{},
		logger:  logger,
	}
}

func (r *redisRepository) Get(ctx context.Context, id string) (*post.Post, error) {
	var raw string
	err := r.breaker.Execute(func() error {
		res, err := r.client.Get(ctx, fmt.Sprintf(PostKeyPattern, id)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = res
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, post.ErrNotFound
	}
	var p post.Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("corrupt post record %s: %w", id, err)
	}
	return &p, nil
}

func (r *redisRepository) Save(ctx context.Context, p *post.Post) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.breaker.Execute(func() error {
		return r.client.Set(ctx, fmt.Sprintf(PostKeyPattern, p.ID), string(data), 0).Err()
	})
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	var deleted int64
	err := r.breaker.Execute(func() error {
		n, err := r.client.Del(ctx, fmt.Sprintf(PostKeyPattern, id)).Result()
		deleted = n
		return err
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return post.ErrNotFound
	}
	return nil
}

// List walks every post key with SCAN and fetches the records in MGET
// batches. Posts come back newest first.
func (r *redisRepository) List(ctx context.Context) ([]*post.Post, error) {
	var keys []string
	err := r.breaker.Execute(func() error {
		var cursor uint64
		for {
			batch, nextCursor, err := r.client.Scan(ctx, cursor, PostScanPattern, scanBatchSize).Result()
			if err != nil {
				return fmt.Errorf("error scanning keys: %w", err)
			}
			keys = append(keys, batch...)
			cursor = nextCursor
			if cursor == 0 {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}

	posts := make([]*post.Post, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatchSize {
		end := start + scanBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		var values []interface{}
		err := r.breaker.Execute(func() error {
			res, err := r.client.MGet(ctx, keys[start:end]...).Result()
			values = res
			return err
		})
		if err != nil {
			return nil, err
		}
		for i, value := range values {
			raw, ok := value.(string)
			if !ok {
				continue
			}
			var p post.Post
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				r.logger.WithField("key", keys[start+i]).Warn("skipping corrupt post record")
				continue
			}
			posts = append(posts, &p)
		}
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Timestamp > posts[j].Timestamp
	})
	return posts, nil
}

func (r *redisRepository) GetImage(ctx context.Context, id string) (*post.Image, error) {
	var data []byte
	var mimeType string
	err := r.breaker.Execute(func() error {
		res, err := r.client.Get(ctx, fmt.Sprintf(ImageKeyPattern, id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data = res
		mimeType, err = r.client.Get(ctx, fmt.Sprintf(ImageTypeKeyPattern, id)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil || mimeType == "" {
		return nil, post.ErrImageNotFound
	}
	return &post.Image{Data: data, MimeType: mimeType}, nil
}

func (r *redisRepository) SaveImage(ctx context.Context, id string, image *post.Image) error {
	return r.breaker.Execute(func() error {
		if err := r.client.Set(ctx, fmt.Sprintf(ImageKeyPattern, id), image.Data, 0).Err(); err != nil {
			return err
		}
		return r.client.Set(ctx, fmt.Sprintf(ImageTypeKeyPattern, id), image.MimeType, 0).Err()
	})
}

func (r *redisRepository) DeleteImage(ctx context.Context, id string) error {
	return r.breaker.Execute(func() error {
		return r.client.Del(
			ctx,
			fmt.Sprintf(ImageKeyPattern, id),
			fmt.Sprintf(ImageTypeKeyPattern, id),
		).Err()
	})
}
