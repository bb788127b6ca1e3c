package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
)

// AvatarStorage configures the S3-compatible bucket avatars are uploaded
// to. Endpoint is set for MinIO-style deployments and left empty for AWS.
type AvatarStorage struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type UserUsecase struct {
	users   repository.UserStore
	cache   UserCache
	storage AvatarStorage
	logger  *slog.Logger
}

func NewUserUsecase(users repository.UserStore, cache UserCache, storage AvatarStorage, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		users:   users,
		cache:   cache,
		storage: storage,
		logger:  logger.With("component", "user_usecase"),
	}
}

func (u *UserUsecase) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(u.storage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.storage.AccessKey,
			u.storage.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if u.storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(u.storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// AvatarUploadURL returns an object key and a presigned PUT URL the client
// uploads the image to directly. The URL expires in 15 minutes.
func (u *UserUsecase) AvatarUploadURL(ctx context.Context, userID string) (key, uploadURL string, err error) {
	if u.storage.Bucket == "" {
		return "", "", fmt.Errorf("avatar storage is not configured")
	}

	presign, err := u.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	key = fmt.Sprintf("avatars/%s/%s", userID, uuid.NewString())
	req, err := presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &u.storage.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("presign avatar upload: %w", err)
	}

	return key, req.URL, nil
}

// SetAvatar persists the public URL for an uploaded object key and
// invalidates the cached user record.
func (u *UserUsecase) SetAvatar(ctx context.Context, emailAddr, key string) (*domain.User, error) {
	avatarURL := u.publicURL(key)

	user, err := u.users.UpdateAvatar(ctx, emailAddr, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	u.cache.Invalidate(ctx, emailAddr)
	return user, nil
}

func (u *UserUsecase) publicURL(key string) string {
	if u.storage.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(u.storage.Endpoint, "/"), u.storage.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.storage.Bucket, u.storage.Region, key)
}
