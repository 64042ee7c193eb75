package post

import "context"

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Get(ctx context.Context, id string) (*Post, error)
	Save(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Post, error)
	GetImage(ctx context.Context, id string) (*Image, error)
	SaveImage(ctx context.Context, id string, image *Image) error
	DeleteImage(ctx context.Context, id string) error
}
