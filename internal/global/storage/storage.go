package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"campus-club-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store 二进制资产存储（头像、活动封面）。
// 配置了 S3 bucket 时走对象存储，否则保存到本地磁盘。
type Store struct {
	SaveDir string // 本地保存目录
	BaseURL string // 访问基础 URL

	Bucket       string
	Region       string
	Endpoint     string
	Prefix       string
	UsePathStyle bool

	s3Client *s3.Client
}

// NewLocal 创建本地磁盘存储
func NewLocal(saveDir, baseURL string) *Store {
	return &Store{
		SaveDir: saveDir,
		BaseURL: baseURL,
	}
}

// NewFromConfig 按全局配置选择存储后端
func NewFromConfig(subdir, baseURL string) *Store {
	cfg := config.Get()
	if cfg.S3.Bucket != "" {
		return &Store{
			BaseURL:      cfg.S3.BaseURL,
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			Prefix:       path.Join(cfg.S3.Prefix, subdir),
			UsePathStyle: cfg.S3.UsePathStyle,
		}
	}
	return NewLocal(filepath.Join(cfg.Storage.Home, subdir), baseURL)
}

// InitS3 延迟初始化 S3 客户端
func (s *Store) InitS3(ctx context.Context) error {
	if s.s3Client != nil {
		return nil
	}
	cfg := config.Get().S3

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	s.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.UsePathStyle
	})
	return nil
}

// SaveImage 保存图片并返回访问 URL
func (s *Store) SaveImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if s.Bucket != "" {
		return s.saveToS3(ctx, fileHeader)
	}
	return s.saveToDisk(fileHeader)
}

func (s *Store) saveToDisk(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := os.MkdirAll(s.SaveDir, os.ModePerm); err != nil {
		return "", err
	}

	filename := uniqueFilename(fileHeader.Filename)
	dst, err := os.Create(filepath.Join(s.SaveDir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(file); err != nil {
		return "", err
	}

	return s.BaseURL + "/" + filename, nil
}

func (s *Store) saveToS3(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := s.InitS3(ctx); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := s.objectKey(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploader := manager.NewUploader(s.s3Client)
	if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("上传 S3 失败: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *Store) objectKey(filename string) string {
	key := path.Join(strings.Trim(s.Prefix, "/"), uniqueFilename(filename))
	return strings.TrimLeft(key, "/")
}

func (s *Store) objectURL(key string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.Endpoint, "/")
	}
	if s.UsePathStyle {
		return base + "/" + s.Bucket + "/" + key
	}
	return base + "/" + key
}

// uniqueFilename 时间戳 + 原始扩展名
func uniqueFilename(original string) string {
	ext := strings.ToLower(path.Ext(original))
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
}
