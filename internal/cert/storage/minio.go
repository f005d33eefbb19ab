package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver 合格证PDF归档存储。client为nil时所有操作为空操作，
// 便于未配置对象存储的环境（如测试）直接运行。
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver 创建归档客户端，endpoint为空时返回禁用实例
func NewArchiver(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Archiver, error) {
	if endpoint == "" {
		return &Archiver{}, nil
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &Archiver{client: client, bucket: bucket}, nil
}

// Enabled 是否已配置对象存储
func (a *Archiver) Enabled() bool {
	return a != nil && a.client != nil
}

// EnsureBucket 确保桶存在
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// PutCertificate 上传一份合格证PDF，对象名为 certificates/<编号>.pdf
func (a *Archiver) PutCertificate(ctx context.Context, certificateNo string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	objectName := fmt.Sprintf("certificates/%s.pdf", certificateNo)
	_, err := a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("archive certificate %s: %w", certificateNo, err)
	}
	return objectName, nil
}
