package blob

type S3Config struct {
	BucketName string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	MaxRetries int
}

// WithMinioConfig creates a configuration for a MinIO (or any path-style S3) endpoint
func WithMinioConfig(url, bucketName, accessKey, secretKey string) *S3Config {
	return &S3Config{
		BucketName: bucketName,
		Endpoint:   url,
		Region:     "us-east-1",
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		MaxRetries: 3,
	}
}
