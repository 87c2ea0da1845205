package utils

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DocumentStore uploads invoice documents to an S3-compatible bucket.
type DocumentStore struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func (d *DocumentStore) client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(d.Region),
		Endpoint:    aws.String(d.Endpoint),
		Credentials: credentials.NewStaticCredentials(d.AccessKey, d.SecretKey, ""),
	}))
	return s3.New(sess)
}

// Upload stores the file under folder/fileName and returns the public URL.
func (d *DocumentStore) Upload(file []byte, fileName, folder, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/pdf"
	}
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	_, err := d.client().PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(d.Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("%s/%s/%s", d.Endpoint, d.Bucket, filePath), nil
}
