// Command uploader uploads a file through a simple-upload signing service:
// it validates the file locally, requests a presigned URL and PUTs the bytes
// directly to the store.
//
// Usage:
//
//	uploader -file photo.jpg -service http://localhost:8080/api/v1
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tendant/simple-upload/pkg/simpleupload"
	"github.com/tendant/simple-upload/pkg/simpleupload/client"
)

func main() {
	var (
		filePath    = flag.String("file", "", "path of the file to upload (required)")
		serviceURL  = flag.String("service", "http://localhost:8080/api/v1", "base URL of the signing API")
		token       = flag.String("token", "", "bearer token for the signing request")
		contentType = flag.String("content-type", simpleupload.DefaultContentType, "MIME type the deployment signs for")
		maxBytes    = flag.Int64("max-bytes", 1_000_000, "local file size ceiling")
		timeout     = flag.Duration("timeout", 5*time.Minute, "overall upload timeout")
		quiet       = flag.Bool("quiet", false, "suppress progress output")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := []client.Option{
		client.WithContentType(*contentType),
		client.WithMaxBytes(*maxBytes),
	}
	if *token != "" {
		opts = append(opts, client.WithBearerToken(*token))
	}
	if !*quiet {
		opts = append(opts, client.WithProgress(func(uploaded int64) {
			fmt.Fprintf(os.Stderr, "\ruploaded %d bytes", uploaded)
		}))
	}

	c := client.New(*serviceURL, opts...)

	file, err := c.SelectFile(*filePath)
	if err != nil {
		slog.Error("file rejected", "file", *filePath, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := c.Upload(ctx, file)
	if err != nil {
		if !*quiet {
			fmt.Fprintln(os.Stderr)
		}
		slog.Error("upload failed", "file", *filePath, "err", err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	slog.Info("upload complete", "key", result.Key, "size", file.Size())
	fmt.Println(result.PublicURL)
}
